// Command rfswitchd is a demo host binary: it loads a YAML config, binds
// a Receiver to either a simulated or real edge source, and optionally
// serves Prometheus metrics, a websocket diagnostic stream, and MQTT
// republishing.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rfswitch/rfswitch"
	"github.com/rfswitch/rfswitch/config"
	"github.com/rfswitch/rfswitch/internal/diag"
	"github.com/rfswitch/rfswitch/metrics"
	"github.com/rfswitch/rfswitch/mqttpub"
	"github.com/rfswitch/rfswitch/platform"
	"github.com/rfswitch/rfswitch/stream"
)

type stdoutSink struct{}

func (stdoutSink) WriteLine(line string) { log.Println(line) }

func main() {
	configFile := flag.String("config", "config.yaml", "Path to configuration file")
	simulate := flag.Bool("simulate", false, "Drive the receiver from a built-in simulated pulse sequence instead of a real edge source")
	deduce := flag.Bool("deduce", false, "Replay the built-in simulated sequence through offline protocol deduction, then exit")
	flag.Parse()

	cfg := config.Default()
	if _, err := os.Stat(*configFile); err == nil {
		loaded, err := config.Load(*configFile)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		cfg = loaded
	} else {
		log.Printf("No config file at %s, using defaults", *configFile)
	}

	var opts []rfswitch.Option
	if cfg.Tracer.Enabled {
		opts = append(opts, rfswitch.WithPulseTracer(cfg.Tracer.Capacity))
	}
	receiver := rfswitch.New(opts...)
	receiver.Begin(cfg.Protocol.BuildProtocolTable())
	if cfg.Tracer.AnalyzerTolerance > 0 {
		receiver.SetAnalyzerTolerancePercent(cfg.Tracer.AnalyzerTolerance)
	}
	log.Printf("rfswitchd: receiver %s started", receiver.ID)

	var detector *rfswitch.ButtonDetector
	if cfg.Debounce.Enabled {
		detector = rfswitch.NewButtonDetector(time.Duration(cfg.Debounce.DelayMsec) * time.Millisecond)
		detector.Begin(receiver)
		detector.OnButtonPressed = func(code rfswitch.ButtonCode) {
			log.Printf("rfswitchd: button pressed: %d", code)
		}
	}

	m := metrics.New(receiver.ID.String())

	var streamServer *stream.Server
	if cfg.Stream.Enabled {
		streamServer = stream.NewServer()
		mux := http.NewServeMux()
		mux.HandleFunc(cfg.Stream.Path, streamServer.Handler)
		if cfg.Metrics.Enabled {
			mux.Handle(cfg.Metrics.Path, promhttp.Handler())
		}
		go func() {
			log.Printf("rfswitchd: serving %s on %s", cfg.Stream.Path, cfg.Stream.Listen)
			if err := http.ListenAndServe(cfg.Stream.Listen, mux); err != nil {
				log.Printf("rfswitchd: diagnostic server stopped: %v", err)
			}
		}()
	} else if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle(cfg.Metrics.Path, promhttp.Handler())
			if err := http.ListenAndServe(cfg.Metrics.Listen, mux); err != nil {
				log.Printf("rfswitchd: metrics server stopped: %v", err)
			}
		}()
	}

	var publisher *mqttpub.Publisher
	if cfg.MQTT.Enabled {
		p, err := mqttpub.New(cfg.MQTT.Broker, cfg.MQTT.Topic, cfg.MQTT.Username, cfg.MQTT.Password)
		if err != nil {
			log.Printf("rfswitchd: MQTT publisher disabled: %v", err)
		} else {
			publisher = p
			defer publisher.Close()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *deduce {
		runDeduction(receiver)
		return
	}

	var src platform.EdgeSource
	if *simulate {
		src = platform.NewSimulator(demoEdgeSequence())
	} else {
		log.Fatalf("rfswitchd: no real edge source wired; pass -simulate to run the demo sequence")
	}

	go pollLoop(ctx, receiver, detector, m, streamServer, publisher)

	if err := platform.Run(ctx, src, receiver); err != nil {
		log.Printf("rfswitchd: edge source stopped: %v", err)
	}
}

func pollLoop(ctx context.Context, r *rfswitch.Receiver, detector *rfswitch.ButtonDetector, m *metrics.Metrics, streamServer *stream.Server, publisher *mqttpub.Publisher) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if detector != nil {
				detector.ScanRcButtons()
				continue
			}
			if !r.Available() {
				continue
			}
			m.Poll(r)
			value := r.ReceivedValue()
			bits := r.ReceivedBitsCount()
			protocolID := r.ReceivedProtocol(0)
			if streamServer != nil {
				streamServer.Broadcast(stream.Packet{
					ReceiverID: r.ID.String(),
					Value:      value,
					Bits:       bits,
					ProtocolID: protocolID,
					DecodedAt:  time.Now().UnixMilli(),
				})
			}
			if publisher != nil {
				if err := publisher.Publish(mqttpub.Payload{
					ReceiverID: r.ID.String(),
					Value:      value,
					Bits:       bits,
					ProtocolID: protocolID,
					Timestamp:  time.Now().Unix(),
				}); err != nil {
					log.Printf("rfswitchd: MQTT publish failed: %v", err)
				}
			}
			r.ResetAvailable()
		}
	}
}

func runDeduction(r *rfswitch.Receiver) {
	src := platform.NewSimulator(demoEdgeSequence())
	ctx := context.Background()
	for {
		high, tUs, err := src.WaitForEdge(ctx)
		if err != nil {
			break
		}
		r.OnEdge(high, tUs)
	}
	var sink diag.LineWriter = stdoutSink{}
	r.DeduceProtocolFromPulseTracer(sink)
}

// demoEdgeSequence replays the canonical row-1 `010011` message from a
// cold start, repeated enough times to exceed the analyzer's minimum
// trace depth.
func demoEdgeSequence() []platform.SimulatedEdge {
	// A pulse's recorded Level is the complement of the pin reading at the
	// edge that ends it (see decoder.OnEdge), and row 1 is a normal-level
	// protocol whose synch-A and data-A pulses are HIGH. So the edge that
	// ends an A pulse must report the pin reading as false, and the edge
	// that ends a B pulse must report it as true.
	bitPair := func(bit int) []platform.SimulatedEdge {
		if bit == 0 {
			return []platform.SimulatedEdge{{High: false, DurationUs: 350}, {High: true, DurationUs: 1050}}
		}
		return []platform.SimulatedEdge{{High: false, DurationUs: 1050}, {High: true, DurationUs: 350}}
	}
	var edges []platform.SimulatedEdge
	for rep := 0; rep < 25; rep++ {
		edges = append(edges, platform.SimulatedEdge{High: false, DurationUs: 350})
		edges = append(edges, platform.SimulatedEdge{High: true, DurationUs: 10850})
		for _, bit := range []int{0, 1, 0, 0, 1, 1} {
			edges = append(edges, bitPair(bit)...)
		}
	}
	edges = append(edges, platform.SimulatedEdge{High: false, DurationUs: 350})
	edges = append(edges, platform.SimulatedEdge{High: true, DurationUs: 10850})
	return edges
}
