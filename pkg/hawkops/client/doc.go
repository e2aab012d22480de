// Package client implements the authenticated request pipeline for the
// StackHawk REST API. Every call asks a HeaderSource for a bearer header,
// sends a JSON request and maps the response status onto the apierr taxonomy.
// Resource services for applications, scans, teams and users are built on the
// generic Get, Post, Put and Delete helpers.
package client
