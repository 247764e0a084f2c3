// Package vc2dump is a CLI utility that dumps the parse-unit structure of
// a VC-2 byte stream.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"mxf/pkg/codec/vc2"
)

const usage = `dump the parse units of a VC-2 byte stream
example: vc2dump frame.vc2
         vc2dump -    (read stdin)`

func main() {
	log.SetFlags(0)
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	args := os.Args
	if len(args) != 2 {
		fmt.Println(usage)
		return fmt.Errorf("expected exactly one argument, got %d", len(args)-1)
	}

	data, err := readInput(args[1])
	if err != nil {
		return err
	}

	units, err := vc2.ScanParseUnits(data)
	if err != nil {
		return fmt.Errorf("%v: %w", args[1], err)
	}

	for i, unit := range units {
		fmt.Printf("[%v] parse_code=0x%02X (%v) payload=%v\n",
			i, unit.ParseCode, parseCodeName(unit.ParseCode), len(unit.Payload))
	}
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func parseCodeName(code byte) string {
	switch code {
	case vc2.ParseCodeSequenceHeader:
		return "sequence header"
	case vc2.ParseCodeEndOfSequence:
		return "end of sequence"
	case vc2.ParseCodeLowDelayPicture:
		return "low delay picture"
	case vc2.ParseCodeHighQualityPicture:
		return "high quality picture"
	default:
		return "other"
	}
}
