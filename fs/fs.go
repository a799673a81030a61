package appfs

import "embed"

// FS holds the database migrations, email templates & static assets shipped with the binaries.
//go:embed migrations/*.sql templates/email/* assets/*
var FS embed.FS
