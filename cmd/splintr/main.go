package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	splintr "github.com/euforicio/splintr-go"
)

func die(err error) { fmt.Fprintln(os.Stderr, err); os.Exit(1) }

func main() {
	if len(os.Args) < 2 {
		fmt.Println("splintr [encode|encode-ordinary|decode|markers] [-variant cl100k_base|o200k_base]")
		return
	}

	fs := flag.NewFlagSet(os.Args[1], flag.ExitOnError)
	variantName := fs.String("variant", "cl100k_base", "encoding variant")
	_ = fs.Parse(os.Args[2:])

	var variant splintr.Variant
	switch *variantName {
	case "cl100k_base":
		variant = splintr.CL100KBase
	case "o200k_base":
		variant = splintr.O200KBase
	default:
		die(fmt.Errorf("unknown variant %q", *variantName))
	}

	switch os.Args[1] {
	case "encode", "encode-ordinary":
		tok, err := splintr.Load(variant)
		if err != nil {
			die(err)
		}
		text, err := io.ReadAll(os.Stdin)
		if err != nil {
			die(err)
		}
		var ids []uint32
		if os.Args[1] == "encode" {
			ids = tok.Encode(string(text))
		} else {
			ids = tok.EncodeOrdinary(string(text))
		}
		_ = json.NewEncoder(os.Stdout).Encode(ids)
	case "decode":
		tok, err := splintr.Load(variant)
		if err != nil {
			die(err)
		}
		var ids []uint32
		if err := json.NewDecoder(os.Stdin).Decode(&ids); err != nil {
			die(err)
		}
		text, err := tok.Decode(ids)
		if err != nil {
			die(err)
		}
		fmt.Print(text)
	case "markers":
		base := variant.Layout().ExtendedBase()
		for off, m := range splintr.Markers() {
			fmt.Printf("%d\t%s\t%s\t%s\n", base+uint32(off), m.Name, m.Category, m.Literal)
		}
	default:
		die(fmt.Errorf("unknown command %q", os.Args[1]))
	}
}
