// Package helm installs, upgrades and removes the per-tenant connector and
// registry packages as Helm releases. Release values are rendered from
// embedded templates against the tenant context.
package helm
