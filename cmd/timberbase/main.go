package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/timberbase/timberbase/internal/clock"
	"github.com/timberbase/timberbase/internal/logger"
	"github.com/timberbase/timberbase/internal/migration"
	"github.com/timberbase/timberbase/internal/server"
	"github.com/timberbase/timberbase/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
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
