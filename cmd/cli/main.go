package main

import (
	"database/sql"
	"fmt"
	"os"
	"path"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/ecopackai/ecopack/pkg/config"
	"github.com/ecopackai/ecopack/pkg/data"
	"github.com/ecopackai/ecopack/pkg/logging"
)

const (
	name = "ecopack"

	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	version = "v0.0.1-default"
	commit  = ""

	debug        bool
	dbFilePath   = path.Join(getHomeDir(), data.DataFileName)
	modelDir     = path.Join(getHomeDir(), "models")
	serverPort   = 8080
	outputFormat = formatJSON
)

func main() {
	logging.Init(false)
	applyConfig()

	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fatalErr(err)
	}
}

func newApp() *cli.App {
	debugFlag := &cli.BoolFlag{
		Name:        "debug",
		Usage:       "Prints verbose logs (optional, default: false)",
		Destination: &debug,
	}

	dbFilePathFlag := &cli.StringFlag{
		Name:        "db",
		Usage:       fmt.Sprintf("Path to the Sqlite database file (optional, defaults to $HOME/.%s/%s)", name, data.DataFileName),
		Value:       dbFilePath,
		Destination: &dbFilePath,
	}

	modelDirFlag := &cli.StringFlag{
		Name:        "models",
		Usage:       fmt.Sprintf("Path to the model artifact directory (optional, defaults to $HOME/.%s/models)", name),
		Value:       modelDir,
		Destination: &modelDir,
	}

	formatFlag := &cli.StringFlag{
		Name:        "format",
		Usage:       "Output format [json, yaml]",
		Value:       outputFormat,
		Destination: &outputFormat,
	}

	return &cli.App{
		Name:                 name,
		Version:              fmt.Sprintf("%s - (commit: %s)", version, commit),
		Compiled:             time.Now(),
		EnableBashCompletion: true,
		HideHelpCommand:      true,
		Usage:                "Packaging sustainability scoring, stats, and recommendations",
		Flags: []cli.Flag{
			debugFlag,
			dbFilePathFlag,
			modelDirFlag,
			formatFlag,
		},
		Commands: []*cli.Command{
			pipelineCmd,
			materialsCmd,
			topMaterialsQueryCmd,
			statsCmd,
			exportCmd,
			chartsCmd,
			serverCmd,
		},
		Before: func(c *cli.Context) error {
			if debug {
				log.SetLevel(log.DebugLevel)
			}
			return data.Init(dbFilePath)
		},
	}
}

func applyConfig() {
	dir, _, err := config.GetOrCreateHomeDir(name)
	if err != nil {
		log.Debugf("error resolving home dir, using defaults: %v", err)
		return
	}
	cfg, err := config.ReadOrCreate(dir)
	if err != nil {
		log.Debugf("error reading config, using defaults: %v", err)
		return
	}
	if cfg.DBPath != "" {
		dbFilePath = cfg.DBPath
	}
	if cfg.ModelDir != "" {
		modelDir = cfg.ModelDir
	}
	if cfg.Port > 0 {
		serverPort = cfg.Port
	}
}

func fatalErr(err error) {
	if err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func getDBOrFail() *sql.DB {
	db, err := data.GetDB(dbFilePath)
	if err != nil {
		log.Fatalf("fatal error creating DB: %v", err)
	}
	return db
}

func getHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Debugf("error getting home dir, using current dir instead: %v", err)
		return "."
	}
	return path.Join(home, "."+name)
}
