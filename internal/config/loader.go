package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// fileChannel/fileDevice mirror ChannelConfig/AudioDeviceConfig in
// plain, non-atomic form so they can be unmarshaled directly by viper
// (backed by gopkg.in/yaml.v3), then copied into the atomic runtime
// structs. This is deliberately a thin YAML binding, not the original
// `config.c` line-oriented parser spec.md §1/§9 puts out of scope.
type fileChannel struct {
	Channel      int     `mapstructure:"channel" yaml:"channel"`
	SlotTime     int32   `mapstructure:"slottime" yaml:"slottime"`
	Persist      int32   `mapstructure:"persist" yaml:"persist"`
	TXDelay      int32   `mapstructure:"txdelay" yaml:"txdelay"`
	TXTail       int32   `mapstructure:"txtail" yaml:"txtail"`
	FullDup      bool    `mapstructure:"fulldup" yaml:"fulldup"`
	DWait        int32   `mapstructure:"dwait" yaml:"dwait"`
	Baud         int     `mapstructure:"baud" yaml:"baud"`
	MarkFreq     int     `mapstructure:"mark_freq" yaml:"mark_freq"`
	SpaceFreq    int     `mapstructure:"space_freq" yaml:"space_freq"`
	FixBits      string  `mapstructure:"fix_bits" yaml:"fix_bits"`
	Layer2Xmit   string  `mapstructure:"layer2_xmit" yaml:"layer2_xmit"`
	FX25Strength int     `mapstructure:"fx25_strength" yaml:"fx25_strength"`
	AudioDevice  int     `mapstructure:"audio_device" yaml:"audio_device"`
	StereoSide   int     `mapstructure:"stereo_side" yaml:"stereo_side"`
	XmitErrPct   int     `mapstructure:"xmit_error_rate" yaml:"xmit_error_rate"`
	RecvBER      float64 `mapstructure:"recv_ber" yaml:"recv_ber"`
}

type fileDevice struct {
	Name       string `mapstructure:"name" yaml:"name"`
	SampleRate int    `mapstructure:"sample_rate" yaml:"sample_rate"`
	Bits       int    `mapstructure:"bits" yaml:"bits"`
	Channels   int    `mapstructure:"channels" yaml:"channels"`
}

type fileConfig struct {
	AudioDevices []fileDevice  `mapstructure:"audio_devices" yaml:"audio_devices"`
	Channels     []fileChannel `mapstructure:"channels" yaml:"channels"`
}

// Load reads a YAML config file (if path is non-empty) through viper,
// applies flags registered on fs as overrides, and returns the
// populated Runtime. fs is expected to already have been parsed by the
// caller (cmd/direwolfd wires this to spf13/pflag.CommandLine).
func Load(path string, fs *pflag.FlagSet) (*Runtime, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}
	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("config: binding flags: %w", err)
		}
	}

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	rt := &Runtime{}
	for _, d := range fc.AudioDevices {
		dev := AudioDeviceConfig{Name: d.Name, SampleRate: d.SampleRate, Bits: d.Bits, Channels: d.Channels}
		if dev.SampleRate == 0 {
			dev.SampleRate = 44100
		}
		if dev.Bits == 0 {
			dev.Bits = 16
		}
		if dev.Channels == 0 {
			dev.Channels = 1
		}
		if err := dev.Validate(); err != nil {
			return nil, err
		}
		rt.AudioDevices = append(rt.AudioDevices, dev)
	}
	if len(rt.AudioDevices) == 0 {
		rt.AudioDevices = append(rt.AudioDevices, AudioDeviceConfig{Name: "default", SampleRate: 44100, Bits: 16, Channels: 1})
	}

	for _, c := range fc.Channels {
		cc := DefaultChannelConfig(c.Channel)
		applyFileChannel(cc, c)
		rt.Channels = append(rt.Channels, cc)
	}
	if len(rt.Channels) == 0 {
		rt.Channels = append(rt.Channels, DefaultChannelConfig(0))
	}
	return rt, nil
}

func applyFileChannel(cc *ChannelConfig, c fileChannel) {
	if c.SlotTime != 0 {
		cc.SlotTime.Store(c.SlotTime)
	}
	if c.Persist != 0 {
		cc.Persist.Store(c.Persist)
	}
	if c.TXDelay != 0 {
		cc.TXDelay.Store(c.TXDelay)
	}
	if c.TXTail != 0 {
		cc.TXTail.Store(c.TXTail)
	}
	cc.FullDup.Store(c.FullDup)
	cc.DWait.Store(c.DWait)
	if c.Baud != 0 {
		cc.Baud = c.Baud
	}
	if c.MarkFreq != 0 {
		cc.MarkFreq = c.MarkFreq
	}
	if c.SpaceFreq != 0 {
		cc.SpaceFreq = c.SpaceFreq
	}
	if c.FixBits == "single" {
		cc.FixBits = FixSingle
	}
	if c.Layer2Xmit == "fx25" {
		cc.Layer2Xmit = Layer2FX25
	}
	cc.FX25Strength = c.FX25Strength
	cc.AudioDevice = c.AudioDevice
	cc.StereoSide = c.StereoSide
	cc.XmitErrorRatePercent = c.XmitErrPct
	cc.RecvBER = c.RecvBER
}
