// main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"vramcalc/config"
	"vramcalc/estimator"
	"vramcalc/logging"
)

var (
	Version string // Version will be set during the build process
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	err = logging.Init(cfg.LogLevel, cfg.LogFilePath)
	if err != nil {
		fmt.Println("Error initializing logging:", err)
		os.Exit(1)
	}

	modelFlag := flag.String("model", "", "HuggingFace model ID (e.g. Nexusflow/Starling-LM-7B-beta)")
	contextFlag := flag.Int("context", 0, "Context length in tokens (0 = model's trained maximum)")
	bpwFlag := flag.Float64("bpw", 4.5, "EXL2 bits per weight")
	cacheBitFlag := flag.Int("cache-bit", 16, "EXL2 KV cache bit width (4, 8 or 16)")
	quantFlag := flag.String("quant", "", "GGUF quantisation level (e.g. Q4_K_S); overrides -bpw")
	tableFlag := flag.Bool("table", false, "Print a comparison table of all GGUF levels and exit")
	listFlag := flag.Bool("list-quants", false, "List the supported GGUF quantisation levels and exit")
	jsonFlag := flag.Bool("json", false, "Print results as JSON")
	vramFlag := flag.Float64("vram", cfg.FitsVRAM, "VRAM budget in GB for table colouring (0 = none)")
	versionFlag := flag.Bool("v", false, "Print the version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Println(Version)
		os.Exit(0)
	}

	if *listFlag {
		fmt.Println(strings.Join(estimator.ListGGUFQuants(), "\n"))
		os.Exit(0)
	}

	if *modelFlag == "" {
		fmt.Println("Error: -model is required")
		flag.Usage()
		os.Exit(1)
	}

	client := estimator.NewClient()
	client.Token = cfg.HuggingFaceToken
	client.GGUFCacheBits = cfg.GGUFCacheBits

	if *tableFlag {
		table, err := client.GenerateQuantTable(*modelFlag, cfg.ContextSizes, *vramFlag)
		if err != nil {
			logging.ErrorLogger.Printf("Error generating quant table: %v\n", err)
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		fmt.Println(estimator.FormatQuantTable(table))
		os.Exit(0)
	}

	context := *contextFlag
	if context == 0 {
		modelConfig, err := client.GetModelConfig(*modelFlag)
		if err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		context = modelConfig.MaxPositionEmbeddings
	}

	var result estimator.SizeResult
	if *quantFlag != "" {
		result, err = client.ComputeSizesGGUF(*modelFlag, context, *quantFlag)
	} else {
		result, err = client.ComputeSizesEXL2(*modelFlag, context, *cacheBitFlag, *bpwFlag)
	}
	if err != nil {
		logging.ErrorLogger.Printf("Error estimating sizes: %v\n", err)
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	if *jsonFlag {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
		return
	}

	fmt.Printf("Model:   %s (context %d)\n", *modelFlag, context)
	fmt.Printf("Weights: %.2f GiB\n", result.ModelSize)
	fmt.Printf("Context: %.2f GiB\n", result.ContextSize)
	fmt.Printf("Total:   %.2f GiB\n", result.TotalSize)
}
