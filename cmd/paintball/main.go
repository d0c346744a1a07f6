package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/cfoust/paintball/pkg/config"

	"github.com/alecthomas/kong"
	"github.com/invopop/jsonschema"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var CLI struct {
	Debug bool `help:"Whether to enable debug logging."`

	Serve struct {
		Configs []string `arg:"" optional:"" name:"configs" help:"Configuration files for the server." type:"file"`
	} `cmd:"" help:"Start the paintball server."`

	Config struct {
		Configs []string `arg:"" optional:"" name:"configs" help:"Configuration files to merge." type:"file"`
	} `cmd:"" help:"Write the effective configuration to standard output."`

	Schema struct {
	} `cmd:"" help:"Write the JSON schema of the configuration to standard output."`
}

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

func configCommand(configs []string) error {
	if len(configs) == 0 {
		_, err := os.Stdout.Write(config.DEFAULT)
		return err
	}

	conf, err := config.Process(configs)
	if err != nil {
		return err
	}

	data, err := conf.YAML()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func schemaCommand() error {
	reflector := jsonschema.Reflector{}
	schema := reflector.Reflect(new(config.Config))
	schema.Title = "Paintball server configuration"
	schema.Description = "Validates the files passed to paintball serve"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func main() {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = log.Output(consoleWriter)

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if len(os.Args) == 1 {
		err := serveCommand([]string{})
		if err != nil {
			writeError(err)
		}
		return
	}

	ctx := kong.Parse(&CLI,
		kong.Name("paintball"),
		kong.Description("a round-based team paintball server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	if CLI.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Warn().Msg("debug logging enabled")
	}

	var err error
	switch ctx.Command() {
	case "serve":
		fallthrough
	case "serve <configs>":
		err = serveCommand(CLI.Serve.Configs)
	case "config":
		fallthrough
	case "config <configs>":
		err = configCommand(CLI.Config.Configs)
	case "schema":
		err = schemaCommand()
	}

	if err != nil {
		writeError(err)
	}
}
