package ptt

import (
	"fmt"
	"os"

	"github.com/jochenvg/go-udev"
)

// cm108ReportSize is the length of the HID output report sent to CM108/
// CM119-family USB sound fobs: a report ID byte, a byte selecting the
// GPIO pin, the pin's data byte, and one zero byte.
const cm108ReportSize = 4

// CM108 drives PTT by writing an HID output report to a CM108-family
// USB sound device's GPIO pin (spec.md §6's "a CM108 HID output
// report").
type CM108 struct {
	f      *os.File
	gpioBit byte
}

// LocateCM108 finds the hidraw device node for the first CM108-family
// sound fob (vendor 0x0d8c) attached to the system, using go-udev —
// grounded on the enrichment named in SPEC_FULL.md §3 (the teacher's
// cm108.go hard-codes a device path; this resolves it dynamically).
func LocateCM108() (string, error) {
	u := udev.Udev{}
	enum := u.NewEnumerate()
	if err := enum.AddMatchSubsystem("hidraw"); err != nil {
		return "", fmt.Errorf("ptt: udev match subsystem: %w", err)
	}
	if err := enum.AddMatchProperty("ID_VENDOR_ID", "0d8c"); err != nil {
		return "", fmt.Errorf("ptt: udev match vendor: %w", err)
	}
	devices, err := enum.Devices()
	if err != nil {
		return "", fmt.Errorf("ptt: udev enumerate: %w", err)
	}
	for _, d := range devices {
		if node := d.Devnode(); node != "" {
			return node, nil
		}
	}
	return "", fmt.Errorf("ptt: no CM108-family hidraw device found")
}

// NewCM108 opens the hidraw device node and drives the given GPIO bit
// (1..3) for PTT.
func NewCM108(devnode string, gpioBit int) (*CM108, error) {
	f, err := os.OpenFile(devnode, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("ptt: opening %s: %w", devnode, err)
	}
	return &CM108{f: f, gpioBit: byte(1 << (gpioBit - 1))}, nil
}

func (c *CM108) Set(_ OutputType, _ int, on bool) error {
	report := make([]byte, cm108ReportSize)
	report[0] = 0x00 // report ID
	report[1] = c.gpioBit
	if on {
		report[2] = c.gpioBit
	}
	_, err := c.f.Write(report)
	return err
}

func (c *CM108) Close() error {
	return c.f.Close()
}
