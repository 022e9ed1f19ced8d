package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	log "log/slog"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"aria/internal/chat"
	"aria/internal/command"
	"aria/internal/config"
	"aria/internal/ipc"
	"aria/internal/proxy"
	"aria/internal/server"
	"aria/internal/session"
	"aria/internal/speech"
	"aria/internal/tts"
	"aria/pkg/audioconv"
	"aria/pkg/stt"
)

// maxAudioSamples caps uploaded recordings at one minute of 16 kHz mono.
const maxAudioSamples = 16000 * 60

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	addr := cli.StringP("addr", "a", "", "Listen address (overrides ARIA_ADDR)")
	logLevel := cli.StringP("log", "l", "", "Log level (overrides ARIA_LOG_LEVEL)")
	cli.Parse()

	godotenv.Load(*envFile)
	cfg := config.Load()
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *logLevel != "" {
		cfg.LogLevel = config.ParseLogLevel(*logLevel)
	}

	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()
	log.SetDefault(logger)

	log.Info("Booting up")

	if cfg.OpenAIKey == "" {
		log.Error("OPENAI_API_KEY not set")
		os.Exit(1)
	}

	var httpClient *http.Client
	if cfg.SocksProxy != "" {
		var err error
		httpClient, err = proxy.NewSocksClient(cfg.SocksProxy)
		if err != nil {
			log.Error("Failed to dial socks proxy", "proxy", cfg.SocksProxy, "err", err)
			os.Exit(1)
		}
		log.Debug("Loaded proxy")
	}

	chatClient := chat.New(chat.Config{
		APIKey:     cfg.OpenAIKey,
		BaseURL:    cfg.OpenAIBaseURL,
		Model:      cfg.ChatModel,
		HTTPClient: httpClient,
		Logger:     logger,
	})

	apiOpts := []option.RequestOption{option.WithAPIKey(cfg.OpenAIKey)}
	if cfg.OpenAIBaseURL != "" {
		apiOpts = append(apiOpts, option.WithBaseURL(cfg.OpenAIBaseURL))
	}
	if httpClient != nil {
		apiOpts = append(apiOpts, option.WithHTTPClient(httpClient))
	}
	api := openai.NewClient(apiOpts...)

	var ducker *tts.Ducker
	if cfg.DuckAudio {
		ducker = tts.NewDucker([]string{"aria"})
	}
	synth := tts.NewSpeaker(api, cfg.SpeechModel, ducker, logger)

	// Recognition is optional: without a microphone or a whisper model
	// the session degrades to text-only.
	var recognizer speech.Recognizer

	recorder, err := speech.NewRecorder()
	if err != nil {
		log.Warn("Audio capture unavailable", "err", err)
	}
	transcriber, err := stt.NewTranscriber(cfg.WhisperModel)
	if err != nil {
		log.Warn("Speech-to-text unavailable", "err", err)
	} else {
		defer transcriber.Close()
	}
	if recorder != nil && transcriber != nil {
		defer recorder.Close()
		recognizer = speech.NewMicRecognizer(recorder, transcriber, cfg.Language, logger)
		log.Debug("Loaded recognizer")
	}

	srv := server.New(logger)

	var ctrl *session.Controller
	adapter := speech.NewAdapter(recognizer, synth, speech.Callbacks{
		ListeningChanged: func(v bool) { ctrl.SetListening(v) },
		SpeakingChanged:  func(v bool) { ctrl.SetSpeaking(v) },
		Transcript: func(text string) {
			ctrl.SetPendingInput(text)
			go func() {
				if err := ctrl.Submit(context.Background(), text); err != nil {
					log.Warn("Voice submission rejected", "err", err)
				}
			}()
		},
		Error:    func(msg string) { log.Warn("Speech error", "msg", msg) },
		Announce: srv.Announce,
	}, logger)

	ctrl = session.NewController(session.Config{
		Interpreter:  command.New(srv.Navigate, srv.Announce, logger),
		Completer:    chatClient,
		Speech:       adapter,
		Navigate:     srv.Navigate,
		Announce:     srv.Announce,
		OnChange:     srv.BroadcastState,
		SpeechOutput: cfg.SpeechOutput,
		Logger:       logger,
	})

	srv.Attach(ctrl, func(ctx context.Context, format string, data []byte) (string, error) {
		if transcriber == nil {
			return "", errors.New("speech-to-text is not available")
		}
		pcm, err := audioconv.DecodePCM16k(data, format, audioconv.Options{MaxSamples: maxAudioSamples})
		if err != nil {
			return "", err
		}
		res, err := transcriber.Transcribe(ctx, pcm, stt.Options{Language: cfg.Language})
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(res.Text), nil
	})

	if err := ipc.StartServer(func(msg ipc.ControlMessage) {
		switch msg.Cmd {
		case "listen":
			adapter.StartListening()
		case "stop":
			adapter.StopListening()
		case "say":
			adapter.Speak(msg.Text, true)
		default:
			log.Warn("Unknown command", "cmd", msg.Cmd)
		}
	}); err != nil {
		log.Error("Failed ipc server", "err", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.HandleWS)

	go func() {
		log.Info("Serving", "addr", cfg.Addr)
		if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
			log.Error("Server failed", "err", err)
			os.Exit(1)
		}
	}()

	log.Info("Boot up - successful")

	select {}
}
