// Package j2cdump is a CLI utility that dumps the header fields of a
// JPEG 2000 codestream.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"mxf/pkg/codec/pictureheader"
)

const usage = `dump the header of a JPEG 2000 codestream
example: j2cdump frame.j2c
         j2cdump -    (read stdin)`

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

	desc, err := pictureheader.ParseJPEG2000(data)
	if err != nil {
		return fmt.Errorf("%v: %w", args[1], err)
	}

	fmt.Printf("width=%v\n", desc.StoredWidth)
	fmt.Printf("height=%v\n", desc.StoredHeight)
	fmt.Printf("component_bits=%v\n", desc.ComponentBits)
	fmt.Printf("codestream_size=%v\n", desc.SampleSize)
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
