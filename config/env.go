package config

import "strings"

// server.http_address <- SERVER_HTTP_ADDRESS
var envReplacer = strings.NewReplacer(".", "_")
