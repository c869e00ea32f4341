package schemas

import "embed"

// SchemasFS содержит JSON-схемы контрактов сервиса
//
//go:embed events documents
var SchemasFS embed.FS
