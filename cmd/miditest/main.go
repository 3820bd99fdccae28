package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"midi-live-vis/midi"
	"midi-live-vis/notes"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "listen":
		name := ""
		if len(os.Args) > 2 {
			name = os.Args[2]
		}
		listen(name)
	case "poll":
		pollDevices()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list           - List all MIDI input ports")
	fmt.Println("  listen [name]  - Print note events from the first matching port")
	fmt.Println("  poll           - Poll for device changes")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	names, ok := midi.InPortNames()
	if !ok {
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return
	}
	for i, name := range names {
		fmt.Printf("  %d: %s\n", i, name)
	}
}

func listen(name string) {
	defer gomidi.CloseDriver()

	for _, in := range gomidi.GetInPorts() {
		if name != "" && !strings.Contains(strings.ToLower(in.String()), strings.ToLower(name)) {
			continue
		}

		kb, err := midi.NewKeyboardController(in.String(), in)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		defer kb.Close()

		fmt.Printf("Listening on %s. Ctrl+C to exit.\n", in.String())
		start := time.Now()
		for ev := range kb.Events() {
			kind := "on "
			if ev.Type == midi.NoteOff {
				kind = "off"
			}
			fmt.Printf("%8.3fs  %s  ch=%-2d %-4s (%3d) vel=%d\n",
				time.Since(start).Seconds(), kind, ev.Channel+1, notes.Name(int(ev.Note)), ev.Note, ev.Velocity)
		}
		return
	}

	fmt.Println("No matching input port")
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect a device to test. Ctrl+C to exit.")

	last := ""

	for {
		names, ok := midi.InPortNames()
		if !ok {
			fmt.Println("  port scan timed out")
			time.Sleep(2 * time.Second)
			continue
		}

		current := strings.Join(names, ",")
		if current != last {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", names)
			last = current
		}

		time.Sleep(2 * time.Second)
	}
}
