package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	mcpgo "github.com/mark3labs/mcp-go/server"

	"youtube_gpt_creator/config"
	"youtube_gpt_creator/generator"
	"youtube_gpt_creator/mcpserver"
	"youtube_gpt_creator/server"
)

const version = "0.1.0"

var verbose bool

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	configPath := flag.String("config", "config/config.json", "path to config.json (optional)")
	topic := flag.String("topic", "", "generate once for this topic and print the result")
	serve := flag.Bool("serve", false, "start web server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides config.server_addr)")
	withMCP := flag.Bool("mcp", false, "expose MCP tools at /mcp when --serve")
	stdio := flag.Bool("stdio", false, "serve MCP tools over stdio")
	mock := flag.Bool("mock", false, "use a canned language model instead of OpenAI")
	flag.BoolVar(&verbose, "v", false, "enable info logs")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	factory := buildFactory(cfg, *mock)

	// MCP over stdio: stdout belongs to the protocol
	if *stdio {
		log.SetOutput(os.Stderr)
		mcpSrv, err := mcpserver.New(factory.Build, version)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err := mcpgo.ServeStdio(mcpSrv.Server()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	// Web server mode
	if *serve {
		srv, err := server.New(cfg, factory.Build, log.Default())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if *withMCP {
			mcpSrv, err := mcpserver.New(factory.Build, version)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			srv.Mount("/mcp", mcpgo.NewStreamableHTTPServer(mcpSrv.Server()))
		}
		listen := cfg.ServerAddr
		if *addr != "" {
			listen = *addr
		}
		if listen == "" {
			listen = config.DefaultAddr
		}
		log.Printf("Starting web server on %s (llm=%s model=%s openai_key=%s serper_key=%s)",
			listen, cfg.LLM.Provider, cfg.LLM.Model, config.MaskKey(cfg.LLM.APIKey), config.MaskKey(cfg.SerperAPIKey))
		if err := http.ListenAndServe(listen, srv.Routes()); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if *topic == "" {
		fmt.Fprintln(os.Stderr, "--topic is required unless --serve or --stdio is set")
		os.Exit(1)
	}

	p, err := factory.Build(generator.Request{Topic: *topic})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	defer cancel()

	sess := generator.NewSession("cli")
	log.Printf("[cli] generating topic=%q", *topic)
	res, err := sess.Run(ctx, p, *topic)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	printResult(os.Stdout, res)
}

func buildFactory(cfg config.Config, mock bool) generator.Factory {
	return generator.Factory{
		Settings: generator.LLMSettings{
			Provider:    cfg.LLM.Provider,
			Model:       cfg.LLM.Model,
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Temperature: cfg.LLM.Temperature,
		},
		SerperAPIKey: cfg.SerperAPIKey,
		Mock:         mock,
		Logger:       log.Default(),
		Verbose:      verbose,
	}
}

func printResult(w io.Writer, res generator.Result) {
	fmt.Fprintf(w, "%s\n\n%s\n\n--- Google Research ---\n%s\n", res.Title, res.Script, res.Research)
}
