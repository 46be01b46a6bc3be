package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"sort"

	log "github.com/sirupsen/logrus"
	"golang.org/x/tools/go/packages"

	"github.com/outparam/outparam"
	"github.com/outparam/outparam/pkgutil"
	"github.com/outparam/outparam/ssafront"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
	dir        = flag.String("dir", "", "alternative directory to run the go build tool in")
	workers    = flag.Int("workers", 0, "number of concurrent analyses (0 = GOMAXPROCS)")
	jsonOut    = flag.Bool("json", false, "emit classifications as JSON")
	debug      = flag.Bool("debug", false, "print fixpoint iteration traces")
)

type paramRecord struct {
	Index     int      `json:"index"`
	Aggregate string   `json:"aggregate"`
	Fields    []string `json:"fields"`
}

type record struct {
	Name   string        `json:"name"`
	Pos    string        `json:"pos,omitempty"`
	Must   []string      `json:"must"`
	May    []string      `json:"may"`
	Params []paramRecord `json:"params,omitempty"`
}

func main() {
	flag.Parse()

	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})
	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	if flag.NArg() == 0 {
		log.Fatal("Specify a package query on the command line")
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				log.Fatal("Failed to close ", f.Name())
			}
		}()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	pkgs, err := pkgutil.LoadPackagesWithConfig(&packages.Config{
		Mode:  pkgutil.LoadMode,
		Tests: true,
		Dir:   *dir,
	}, flag.Args()...)
	if err != nil {
		log.Fatalf("Loading packages failed: %v", err)
	}

	log.Infof("Loaded %d packages", len(pkgs))

	prog, _ := pkgutil.BuildSSA(pkgs)
	bodies := ssafront.LowerProgram(prog)

	log.Infof("Lowered %d functions", len(bodies))

	results := outparam.AnalyzeAll(bodies, outparam.Config{Workers: *workers})

	reporter := textReporter()
	if *jsonOut {
		reporter = jsonReporter()
	}
	for _, c := range results {
		reporter.Report(c)
	}

	log.Infof("%d functions with output-parameter candidates", len(results))
}

func textReporter() outparam.Reporter {
	return outparam.ReporterFunc(func(c *outparam.Classification) {
		fmt.Println(c)
		for _, p := range toRecord(c).Params {
			fmt.Printf("  %d: %s %v\n", p.Index, p.Aggregate, p.Fields)
		}
	})
}

func jsonReporter() outparam.Reporter {
	enc := json.NewEncoder(os.Stdout)
	return outparam.ReporterFunc(func(c *outparam.Classification) {
		if err := enc.Encode(toRecord(c)); err != nil {
			log.Fatalf("Encoding failed: %v", err)
		}
	})
}

func toRecord(c *outparam.Classification) record {
	r := record{
		Name: c.Name,
		Pos:  c.Pos,
		Must: c.MustWriteStrings(),
		May:  c.MayWriteStrings(),
	}
	indices := make([]int, 0, len(c.Params))
	for i := range c.Params {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	for _, i := range indices {
		agg := c.Params[i]
		pr := paramRecord{Index: i, Aggregate: agg.Name}
		for _, f := range agg.Fields {
			pr.Fields = append(pr.Fields, f.Name+" "+f.Type)
		}
		r.Params = append(r.Params, pr)
	}
	return r
}
