package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/opengov-ph/barangay/internal/config"
	"github.com/opengov-ph/barangay/internal/logger"
	"github.com/opengov-ph/barangay/internal/migration"
	"github.com/opengov-ph/barangay/internal/server"
	"github.com/opengov-ph/barangay/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,

		// Schema and bootstrap data
		migration.Module,

		// HTTP surface plus every domain module it serves
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
