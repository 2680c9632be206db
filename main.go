package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	log "github.com/echocat/slf4g"
	"github.com/echocat/slf4g/native"
	"github.com/echocat/slf4g/native/consumer"
	"github.com/echocat/slf4g/native/facade/value"
	"github.com/echocat/slf4g/native/formatter"

	"github.com/blaubaer/talk-assistant/pkg/app"
)

func main() {
	// Stdout belongs to the replies.
	consumer.Default = consumer.NewWriter(os.Stderr)

	lv := value.NewProvider(native.DefaultProvider)
	lv.Consumer.Formatter.Codec = value.MappingFormatterCodec{
		"text": formatter.NewText(func(v *formatter.Text) {
			bv := true
			v.AllowMultiLineMessage = &bv
			v.MultiLineMessageAfterFields = &bv
		}),
		"json": formatter.NewJson(),
	}

	if err := app.LoadEnvironment(); err != nil {
		log.WithError(err).
			Warn("Cannot load environment file.")
	}

	a := app.NewApp()

	cmd := kingpin.New("talk-assistant", "Push a button, talk, release it and listen to the answer.").
		Action(func(pc *kingpin.ParseContext) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			stop := context.AfterFunc(ctx, func() {
				log.Info("Terminated. Going down...")
			})
			defer stop()

			a.UseCommandLine(pc)
			if err := a.Initialize(); err != nil {
				return err
			}
			defer func() {
				if err := a.Dispose(); err != nil {
					log.WithError(err).
						Warn("Cannot dispose cleanly.")
				}
			}()

			return a.Run(ctx)
		})
	a.SetupConfiguration(cmd)

	cmd.Flag("log.level", "").
		SetValue(lv.Level)
	cmd.Flag("log.format", "").
		Default("text").
		SetValue(lv.Consumer.Formatter)
	cmd.Flag("log.color", "").
		Default("auto").
		SetValue(lv.Consumer.Formatter.ColorMode)

	kingpin.MustParse(cmd.Parse(os.Args[1:]))
}
