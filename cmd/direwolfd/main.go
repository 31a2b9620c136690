// Command direwolfd is the software-defined TNC daemon: it loads
// configuration, opens audio devices and PTT lines, and runs one
// XmitScheduler per channel and one RecvDispatcher per audio device
// against a single AppDispatcher, the way the teacher's direwolf.c main() wires up its
// per-channel threads.
package main

import (
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/n7dwg/direwolf-go/internal/app"
	"github.com/n7dwg/direwolf-go/internal/audio"
	"github.com/n7dwg/direwolf-go/internal/config"
	"github.com/n7dwg/direwolf-go/internal/demod"
	"github.com/n7dwg/direwolf-go/internal/dlq"
	"github.com/n7dwg/direwolf-go/internal/dwlog"
	"github.com/n7dwg/direwolf-go/internal/kiss"
	"github.com/n7dwg/direwolf-go/internal/metrics"
	"github.com/n7dwg/direwolf-go/internal/monitor"
	"github.com/n7dwg/direwolf-go/internal/recv"
	"github.com/n7dwg/direwolf-go/internal/tone"
	"github.com/n7dwg/direwolf-go/internal/xmit"
)

func main() {
	var (
		configPath = pflag.StringP("config", "c", "", "path to direwolf.yaml")
		debug      = pflag.BoolP("debug", "d", false, "enable debug logging")
		httpAddr   = pflag.String("http", ":9001", "address for /metrics and /monitor")
		ptyKISS    = pflag.Bool("pty-kiss", true, "expose a KISS PTY for each channel")
	)
	pflag.Parse()
	dwlog.SetDebug(*debug)

	rt, err := config.Load(*configPath, pflag.CommandLine)
	if err != nil {
		dwlog.Error.Fatalf("loading config: %v", err)
	}

	reg := prometheus.NewRegistry()
	mcs := metrics.NewCollectors(reg)

	q := dlq.New(
		dlq.WithLogger(dlqLoggerAdapter{}),
		dlq.WithAppendHook(mcs.DlqAppendHook),
	)

	hub := monitor.NewHub()
	sinks := []app.Sink{hub}

	devices := make([]audio.Device, len(rt.AudioDevices))
	for i, dc := range rt.AudioDevices {
		dev, err := audio.OpenPortAudioDevice(audio.DeviceOpenParams{SampleRate: dc.SampleRate, Channels: dc.Channels})
		if err != nil {
			dwlog.Error.Fatalf("opening audio device %q: %v", dc.Name, err)
		}
		devices[i] = dev
	}

	stop := make(chan struct{})
	var recvChannels = map[int][]*recv.Channel{} // keyed by audio device index
	audioLocks := make([]sync.Mutex, len(devices)) // one per audio device, shared by its channels

	for _, cc := range rt.Channels {
		dev := devices[cc.AudioDevice]
		dcd := &recv.DCDTracker{}

		decOnFrame := recv.OnDecodedFrame(q, cc.Channel, 0)
		dec := newDecoder(cc, decOnFrame, dcd)
		dmod := demod.NewDemodulator(dec, dev.SampleRate(), cc.Baud, cc.MarkFreq, cc.SpaceFreq)

		rc := &recv.Channel{Cfg: cc, Demod: dmod}
		recvChannels[cc.AudioDevice] = append(recvChannels[cc.AudioDevice], rc)

		line, err := pttLineFor(cc)
		if err != nil {
			dwlog.Error.Fatalf("channel %d: configuring PTT: %v", cc.Channel, err)
		}

		sink := audio.ChannelSink{Dev: dev, DevChan: cc.StereoSide}
		gen := tone.NewGenerator(sink, dev.SampleRate(), cc.Baud, cc.MarkFreq, cc.SpaceFreq, 0.7)
		txq := newTxQueueFor(cc)

		sched := xmit.NewScheduler(cc, txq, dcd.Busy, line, gen, &audioLocks[cc.AudioDevice])
		go sched.Run(stop)

		if *ptyKISS {
			portName := cc.Channel
			pty, err := kiss.OpenPTYSink(kissIntoQueue(txq, portName))
			if err != nil {
				dwlog.Error.Printf("channel %d: opening KISS PTY: %v", cc.Channel, err)
			} else {
				dwlog.Info.Printf("channel %d: KISS available on %s", cc.Channel, pty.Name())
			}
		}
	}

	for devIdx, dev := range devices {
		channels := recvChannels[devIdx]
		if len(channels) == 0 {
			continue
		}
		rd := recv.NewDispatcher(dev, channels, q)
		go rd.Run(stop)
	}

	appd := app.NewDispatcher(q, sinks...)
	go appd.Run(stop)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/monitor", hub)
	go func() {
		if err := http.ListenAndServe(*httpAddr, mux); err != nil {
			dwlog.Error.Printf("http server: %v", err)
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	dwlog.Info.Print("shutting down")
	close(stop)
	for _, dev := range devices {
		_ = dev.Close()
	}
}
