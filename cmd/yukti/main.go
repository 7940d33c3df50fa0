// Yukti - real-time voice conversation client for the Gemini Live API.
// Captures microphone audio, streams it to the model, and plays the
// synthesized reply gap-free with barge-in support. A local web dashboard
// drives connect/disconnect and shows live transcripts.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/yukti-live/yukti/internal/config"
	"github.com/yukti-live/yukti/internal/log"
	"github.com/yukti-live/yukti/pkg/audioio"
	"github.com/yukti-live/yukti/pkg/camera"
	"github.com/yukti-live/yukti/pkg/session"
	"github.com/yukti-live/yukti/pkg/web"
)

const defaultSystemInstruction = "You are Yukti, a warm and curious voice companion. " +
	"Keep replies short and conversational. Use the set_expression tool to match " +
	"your face to the mood of what you say."

func main() {
	flags := parseFlags()
	log.Init(flags.logLevel)
	logger := log.L()

	cfg := session.DefaultConfig()
	cfg.APIKey = config.GoogleAPIKeyRequired()
	cfg.Model = flags.model
	cfg.Voice = flags.voice
	cfg.SystemInstruction = flags.prompt
	cfg.Audio.Backend = audioio.Backend(flags.audioBackend)
	cfg.Audio.Device = flags.audioDevice

	deps := session.Deps{}
	if flags.cameraOn {
		cam, err := camera.OpenWebcam(camera.DefaultConfig(), logger)
		if err != nil {
			logger.Warn("camera unavailable, continuing without", "err", err)
		} else {
			deps.Camera = cam
			defer cam.Close()
		}
	}

	server := web.NewServer(flags.port, logger)

	ctrl, err := session.NewController(cfg, deps, server.Callbacks(), logger)
	if err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	server.Bind(ctrl)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	server.StartAsync()

	if flags.autoConnect {
		if err := ctrl.Connect(ctx); err != nil {
			logger.Error("initial connect failed", "err", err)
		}
	}

	<-ctx.Done()
	logger.Info("shutting down")

	if err := ctrl.Disconnect(); err != nil {
		logger.Warn("disconnect failed", "err", err)
	}
	if err := server.Shutdown(); err != nil {
		logger.Warn("dashboard shutdown failed", "err", err)
	}
}

type cliFlags struct {
	port         string
	logLevel     string
	model        string
	voice        string
	prompt       string
	audioBackend string
	audioDevice  string
	cameraOn     bool
	autoConnect  bool
}

func parseFlags() cliFlags {
	f := cliFlags{}

	flag.StringVar(&f.port, "port", config.DashboardPort(), "Dashboard HTTP port")
	flag.StringVar(&f.logLevel, "log-level", config.LogLevel(), "Log level: debug, info, warn, error")
	flag.StringVar(&f.model, "model", "", "Live model name (default: built-in)")
	flag.StringVar(&f.voice, "voice", "", "Output voice name (default: built-in)")
	flag.StringVar(&f.prompt, "prompt", defaultSystemInstruction, "System instruction text")
	flag.StringVar(&f.audioBackend, "audio-backend", string(audioio.BackendAuto), "Audio backend: auto, exec, mock")
	flag.StringVar(&f.audioDevice, "audio-device", "", "Capture device (e.g. ALSA hw:1,0)")
	flag.BoolVar(&f.cameraOn, "camera", false, "Enable the camera snapshot stream")
	flag.BoolVar(&f.autoConnect, "connect", false, "Connect immediately instead of waiting for the dashboard")
	flag.Parse()

	return f
}
