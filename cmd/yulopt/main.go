// Command yulopt removes redundant assignments and stores from Yul source.
//
// Usage:
//
//	yulopt [options] <input.yul>
//	cat input.yul | yulopt [options]
//
// Options:
//
//	-o <file>                   Write output to file (default: stdout)
//	--config <file>             Use specific config file
//	--no-config                 Ignore config files
//	--ignore-memory             Leave memory stores untouched
//	--loop-depth-limit          Exact loop analysis depth (default 6)
//	--remove-unused-functions   Also delete unreachable functions
//	--minify-whitespace         Print output with minimal whitespace
//	--version                   Print version and exit
//	--help                      Print help and exit
//
// Config file:
//
//	yulopt looks for yulopt.json or .yuloptrc in the current directory
//	and parent directories. Config file options are overridden by CLI flags.
//
// Example yulopt.json:
//
//	{
//	    "ignoreMemory": false,
//	    "loopDepthLimit": 6,
//	    "minifyWhitespace": false
//	}
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Ahmed-Ali/solidity/internal/config"
	"github.com/Ahmed-Ali/solidity/internal/optimizer"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Flags
	var (
		outputFile       string
		configFile       string
		noConfig         bool
		ignoreMemory     bool
		loopDepthLimit   int
		removeUnused     bool
		minifyWhitespace bool
		showVersion      bool
		showHelp         bool
	)

	flag.StringVar(&outputFile, "o", "", "Write output to `file`")
	flag.StringVar(&configFile, "config", "", "Use specific config `file`")
	flag.BoolVar(&noConfig, "no-config", false, "Ignore config files")
	flag.BoolVar(&ignoreMemory, "ignore-memory", false, "Leave memory stores untouched")
	flag.IntVar(&loopDepthLimit, "loop-depth-limit", 0, "Exact loop analysis depth (0 = default)")
	flag.BoolVar(&removeUnused, "remove-unused-functions", false, "Also delete unreachable functions")
	flag.BoolVar(&minifyWhitespace, "minify-whitespace", false, "Print output with minimal whitespace")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.BoolVar(&showHelp, "help", false, "Print help and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "yulopt - Yul Dead Store Optimizer v%s\n\n", version)
		fmt.Fprintf(os.Stderr, "Usage: yulopt [options] <input.yul>\n")
		fmt.Fprintf(os.Stderr, "       cat input.yul | yulopt [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nConfig file:\n")
		fmt.Fprintf(os.Stderr, "  Searches for yulopt.json or .yuloptrc in current and parent directories.\n")
		fmt.Fprintf(os.Stderr, "  CLI flags override config file settings.\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  yulopt contract.yul -o contract.opt.yul\n")
		fmt.Fprintf(os.Stderr, "  cat contract.yul | yulopt > contract.opt.yul\n")
		fmt.Fprintf(os.Stderr, "  yulopt --ignore-memory contract.yul\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		return nil
	}

	if showVersion {
		fmt.Printf("yulopt v%s (%s)\n", version, commit)
		return nil
	}

	// Read input
	var source []byte
	var err error

	if flag.NArg() > 0 {
		// Read from file
		source, err = os.ReadFile(flag.Arg(0))
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
	} else {
		// Check if stdin is a pipe
		stat, _ := os.Stdin.Stat()
		if (stat.Mode() & os.ModeCharDevice) != 0 {
			flag.Usage()
			return fmt.Errorf("no input file specified")
		}
		// Read from stdin
		source, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	}

	// Load config file
	var cfg *config.Config
	var configPath string
	if !noConfig {
		var err error
		if configFile != "" {
			// Use specified config file
			cfg, err = config.LoadFile(configFile)
			if err != nil {
				return fmt.Errorf("loading config file %s: %w", configFile, err)
			}
			configPath = configFile
		} else {
			// Search for config file
			startDir, _ := os.Getwd()
			if flag.NArg() > 0 {
				startDir = filepath.Dir(flag.Arg(0))
			}
			cfg, configPath, err = config.Load(startDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
		}
	}

	// Build options from config (or defaults) and CLI overrides
	var opts optimizer.Options
	if cfg != nil {
		// Build CLI overrides - only set if explicitly specified
		var cliOpts config.MergeOptions
		if ignoreMemory {
			cliOpts.IgnoreMemory = &ignoreMemory
		}
		if loopDepthLimit > 0 {
			cliOpts.LoopDepthLimit = &loopDepthLimit
		}
		if removeUnused {
			cliOpts.RemoveUnusedFunctions = &removeUnused
		}
		if minifyWhitespace {
			cliOpts.MinifyWhitespace = &minifyWhitespace
		}

		opts = cfg.Merge(cliOpts)

		if outputFile != "" && configPath != "" {
			fmt.Fprintf(os.Stderr, "Using config: %s\n", configPath)
		}
	} else {
		// No config file, use CLI flags directly
		opts = optimizer.Options{
			IgnoreMemory:          ignoreMemory,
			LoopDepthLimit:        loopDepthLimit,
			RemoveUnusedFunctions: removeUnused,
			MinifyWhitespace:      minifyWhitespace,
		}
	}

	// Optimize
	result, err := optimizer.New(opts).Optimize(string(source))
	if err != nil {
		return err
	}

	// Check for errors
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "error: %d:%d: %s\n", e.Line, e.Column, e.Message)
		}
		return fmt.Errorf("optimization failed with %d error(s)", len(result.Errors))
	}

	// Write output
	var output io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	_, err = io.WriteString(output, result.Code)
	if err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	// Print stats to stderr if output is to file
	if outputFile != "" {
		fmt.Fprintf(os.Stderr, "Removed %d assignment(s) and %d store(s): %d -> %d bytes\n",
			result.Stats.AssignmentsRemoved, result.Stats.StoresRemoved,
			result.Stats.OriginalSize, result.Stats.OptimizedSize)
	}

	return nil
}
