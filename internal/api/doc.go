// Package api provides the auto-setup REST API.
//
//	@title						Tenant Auto-Setup API
//	@version					1.0
//	@description				Onboards tenants by provisioning storage, connector, registry and portal resources.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						X-API-Key
package api
