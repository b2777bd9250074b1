package main

import (
	"github.com/davideneu/hattrick-matchview/cmd/matchview-cli/commands"
	"github.com/davideneu/hattrick-matchview/lib/serviceutil"
	"github.com/davideneu/hattrick-matchview/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()
	_, err := telemetry.SetupFromEnv(ctx, "matchview-cli")
	if err != nil {
		serviceutil.Fatal("failed to set up telemetry", err)
	}
	commands.ExecuteContext(ctx)
}
