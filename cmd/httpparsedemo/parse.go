package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/reveldb/httpparse"
	"github.com/reveldb/httpparse/config"
	"github.com/reveldb/httpparse/internal/plog"
)

var (
	messagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "httpparsedemo_messages_total",
		Help: "Total number of complete HTTP messages parsed",
	})
	bodyBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "httpparsedemo_body_bytes_total",
		Help: "Total number of body bytes observed across all parsed messages",
	})
)

type parseCmdConfig struct {
	File        string
	Response    bool
	ConfigFile  string
	Slow        bool
	MetricsAddr string
}

var parseConfig parseCmdConfig

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Feed a file of raw HTTP bytes through the parser",
	Example: "# httpparsedemo parse --file request.txt\n" +
		"# httpparsedemo parse --file response.txt --response --slow",
	Run: runParse,
}

func init() {
	parseCmd.Flags().StringVar(&parseConfig.File, "file", "", "Path to a file of raw HTTP/1.x bytes (required)")
	parseCmd.Flags().BoolVar(&parseConfig.Response, "response", false, "Parse the file as a response instead of a request")
	parseCmd.Flags().StringVar(&parseConfig.ConfigFile, "config", "", "Path to a JSON config file (see the config subcommand)")
	parseCmd.Flags().BoolVar(&parseConfig.Slow, "slow", false, "Feed the file one byte at a time")
	parseCmd.Flags().StringVar(&parseConfig.MetricsAddr, "metrics-addr", "", "If set, serve Prometheus metrics on this address (e.g. :9090)")
	_ = parseCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) {
	runID := uuid.New().String()
	log := plog.New(plog.Options{Level: string(plog.LevelDebug), Stream: "stdout"}).With("run_id", runID)

	if parseConfig.ConfigFile != "" {
		cfg, err := config.Load(parseConfig.ConfigFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
		log = plog.New(plog.FromConfigLog(cfg.Log.Level, cfg.Log.Stream)).With("run_id", runID)
	}

	if parseConfig.MetricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(parseConfig.MetricsAddr, nil); err != nil {
				log.Errorf("metrics server stopped: %v", err)
			}
		}()
		log.Infof("serving metrics on %s", parseConfig.MetricsAddr)
	}

	data, err := os.ReadFile(parseConfig.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", parseConfig.File, err)
		os.Exit(1)
	}

	typ := httpparse.Request
	if parseConfig.Response {
		typ = httpparse.Response
	}
	p := httpparse.New(typ)

	hooks := &httpparse.Hooks{
		MsgBegin:       func(p *httpparse.Parser) int { log.Debugf("MsgBegin"); return 0 },
		HdrsBegin:      func(p *httpparse.Parser) int { log.Debugf("HdrsBegin"); return 0 },
		HdrsComplete:   func(p *httpparse.Parser) int { log.Debugf("HdrsComplete"); return 0 },
		NewChunk:       func(p *httpparse.Parser) int { log.Debugf("NewChunk"); return 0 },
		ChunkComplete:  func(p *httpparse.Parser) int { log.Debugf("ChunkComplete"); return 0 },
		ChunksComplete: func(p *httpparse.Parser) int { log.Debugf("ChunksComplete"); return 0 },
		MsgComplete: func(p *httpparse.Parser) int {
			log.Debugf("MsgComplete")
			messagesTotal.Inc()
			return 0
		},
		Method:   func(p *httpparse.Parser, b []byte) int { log.Debugf("Method: %s", b); return 0 },
		Scheme:   func(p *httpparse.Parser, b []byte) int { log.Debugf("Scheme: %s", b); return 0 },
		Host:     func(p *httpparse.Parser, b []byte) int { log.Debugf("Host: %s", b); return 0 },
		Port:     func(p *httpparse.Parser, b []byte) int { log.Debugf("Port: %s", b); return 0 },
		Path:     func(p *httpparse.Parser, b []byte) int { log.Debugf("Path: %s", b); return 0 },
		Args:     func(p *httpparse.Parser, b []byte) int { log.Debugf("Args: %s", b); return 0 },
		Uri:      func(p *httpparse.Parser, b []byte) int { log.Debugf("Uri: %s", b); return 0 },
		HdrKey:   func(p *httpparse.Parser, b []byte) int { log.Debugf("HdrKey: %s", b); return 0 },
		HdrVal:   func(p *httpparse.Parser, b []byte) int { log.Debugf("HdrVal: %s", b); return 0 },
		Hostname: func(p *httpparse.Parser, b []byte) int { log.Debugf("Hostname: %s", b); return 0 },
		Body: func(p *httpparse.Parser, b []byte) int {
			bodyBytesTotal.Add(float64(len(b)))
			log.Debugf("Body: %d bytes", len(b))
			return 0
		},
	}

	if parseConfig.Slow {
		for len(data) > 0 {
			n := p.Run(hooks, data[:1])
			if p.Error() != httpparse.ErrNone {
				break
			}
			data = data[n:]
		}
	} else {
		p.Run(hooks, data)
	}

	if p.Error() != httpparse.ErrNone {
		fmt.Fprintf(os.Stderr, "parse error: %s\n", p.ErrorString())
		os.Exit(1)
	}

	fmt.Printf("method:        %s\n", p.MethodString())
	fmt.Printf("version:       %d.%d\n", p.Major(), p.Minor())
	fmt.Printf("status:        %d\n", p.Status())
	fmt.Printf("content-length: %d\n", p.ContentLength())
	fmt.Printf("keep-alive:    %t\n", p.ShouldKeepAlive())
}
