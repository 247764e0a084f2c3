// Package h264dump is a CLI utility that dumps the NAL unit structure of
// a raw H.264 / AVC-Intra byte stream.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"mxf/pkg/codec/avcintra"
)

const usage = `dump the NAL units of a raw H.264 byte stream
example: h264dump frame.264
         h264dump -    (read stdin)`

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

	units := avcintra.ScanNALUnits(data)
	if len(units) == 0 {
		return fmt.Errorf("%v: no NAL units found", args[1])
	}

	for i, unit := range units {
		typ := avcintra.NALType(unit)
		fmt.Printf("[%v] type=%v (%v) size=%v\n", i, typ, nalTypeName(typ), len(unit))
		if typ == 7 && len(unit) > 1 {
			profile, level, err := avcintra.ParseSPSProfile(unit[1:])
			if err != nil {
				return fmt.Errorf("parse sps: %w", err)
			}
			fmt.Printf("    profile_idc=%v level_idc=%v\n", profile, level)
		}
	}
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func nalTypeName(typ byte) string {
	switch typ {
	case 1:
		return "non-IDR slice"
	case 5:
		return "IDR slice"
	case 6:
		return "SEI"
	case 7:
		return "SPS"
	case 8:
		return "PPS"
	case 9:
		return "access unit delimiter"
	case 10:
		return "end of sequence"
	case 12:
		return "filler"
	default:
		return "other"
	}
}
