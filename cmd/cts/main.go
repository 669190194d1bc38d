// Command cts runs the Control-Time Sliding algorithm against a signed PDF
// and a trust anchor, printing the resulting constraint trace as JSON.
//
// Grounded on cli/verify.go's shape: a flag.FlagSet with a custom Usage,
// log.Fatalf on parse errors, an Args() length guard, and a final
// json.Marshal-then-Println of the result. osExit is a package-level
// indirection over os.Exit, the same pattern cli/commands.go and
// cli/verify.go use to let tests patch it. runEngine recovers around the
// engine run the way verify.Reader recovers around its own parsing
// panics, turning a programming-error panic into a logged failure instead
// of a crash.
package main

import (
	"crypto/x509"
	"encoding/pem"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sigtrust/cts"
	"github.com/sigtrust/cts/loader"
	"github.com/sigtrust/cts/policy"
	"github.com/sigtrust/cts/report/reportjson"
)

var osExit = os.Exit

func main() {
	if len(os.Args) < 2 {
		usage()
		osExit(1)
	}

	switch os.Args[1] {
	case "verify":
		runVerify()
	default:
		usage()
		osExit(1)
	}
}

func usage() {
	fmt.Printf("Usage: %s verify [options] <input.pdf>\n\n", os.Args[0])
	fmt.Println("Evaluate the Control-Time Sliding algorithm against a signed PDF")
	fmt.Println("\nUse '" + os.Args[0] + " verify -h' for command-specific help")
}

func runVerify() {
	flags := flag.NewFlagSet("verify", flag.ExitOnError)

	var policyPath string
	var anchorPath string
	var at string

	flags.StringVar(&policyPath, "policy", "", "Path to a validation policy TOML file (required)")
	flags.StringVar(&anchorPath, "anchor", "", "Path to a PEM file of trusted root certificates (required)")
	flags.StringVar(&at, "at", "", "Evaluate as of this RFC 3339 instant instead of the current time")

	flags.Usage = func() {
		fmt.Printf("Usage: %s verify [options] <input.pdf>\n\n", os.Args[0])
		fmt.Println("Options:")
		flags.PrintDefaults()
		fmt.Println("\nExamples:")
		fmt.Printf("  %s verify -policy policy.toml -anchor roots.pem document.pdf\n", os.Args[0])
	}

	if err := flags.Parse(os.Args[2:]); err != nil {
		log.Fatalf("failed to parse verify flags: %v", err)
	}

	if len(flags.Args()) < 1 || policyPath == "" || anchorPath == "" {
		flags.Usage()
		osExit(1)
	}

	input := flags.Arg(0)

	pol, err := policy.Load(policyPath)
	if err != nil {
		log.Print(err)
		osExit(1)
	}

	anchors, err := loadTrustAnchors(anchorPath)
	if err != nil {
		log.Print(err)
		osExit(1)
	}

	file, err := os.Open(input)
	if err != nil {
		log.Print(err)
		osExit(1)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		log.Print(err)
		osExit(1)
	}

	result, err := loader.FromPDF(file, info.Size(), anchors)
	if err != nil {
		log.Print(err)
		osExit(1)
	}

	builder := cts.New(result.Chain, result.Diag).
		WithPolicy(pol).
		WithPOE(result.POE)

	if at != "" {
		ts, err := time.Parse(time.RFC3339, at)
		if err != nil {
			log.Printf("invalid -at value %q: %v", at, err)
			osExit(1)
		}
		builder = builder.At(ts)
	}

	conclusion, err := runEngine(builder)
	if err != nil {
		log.Print(err)
		osExit(1)
	}

	jsonData, err := reportjson.Marshal(conclusion.Trace)
	if err != nil {
		log.Print(err)
		osExit(1)
	}

	fmt.Printf("indication: %s\n", conclusion.Indication)
	if conclusion.SubIndication != cts.None {
		fmt.Printf("sub-indication: %s\n", conclusion.SubIndication)
	}
	fmt.Printf("control-time: %s\n", conclusion.ControlTime.Format(time.RFC3339))
	fmt.Println(string(jsonData))
}

// runEngine runs the CTS engine and recovers from the programming-error
// panics Run/Builder.Run document (empty chain, nil collaborators, a
// malformed diagnostic-data result), the same way verify.Reader recovers
// around its own parsing panics rather than letting them crash the process.
func runEngine(b *cts.Builder) (conclusion cts.Conclusion, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cts: engine run failed (%v)", r)
		}
	}()
	return b.Run(), nil
}

func loadTrustAnchors(path string) (loader.TrustAnchors, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trust anchor file %s: %w", path, err)
	}

	var certs []*x509.Certificate
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse certificate in %s: %w", path, err)
		}
		certs = append(certs, cert)
	}

	if len(certs) == 0 {
		return nil, fmt.Errorf("no certificates found in %s", path)
	}

	return loader.NewTrustAnchors(certs...), nil
}
