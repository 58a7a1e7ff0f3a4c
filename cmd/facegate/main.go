package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/config"
	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/logging"
)

const version = "1.0.0"

// Command represents a CLI command.
type Command struct {
	Name        string
	Description string
	Usage       string
	Run         func(args []string) error
}

var (
	cfg      *config.Config
	commands map[string]*Command
)

func init() {
	commands = map[string]*Command{
		"register": {
			Name:        "register",
			Description: "Register a visitor's face from an image",
			Usage:       "facegate register <subject> <image-file>",
			Run:         cmdRegister,
		},
		"verify": {
			Name:        "verify",
			Description: "Verify an image against an enrolled visitor",
			Usage:       "facegate verify <subject> <image-file>",
			Run:         cmdVerify,
		},
		"serve": {
			Name:        "serve",
			Description: "Run the verification HTTP API",
			Usage:       "facegate serve",
			Run:         cmdServe,
		},
		"models": {
			Name:        "models",
			Description: "Download the face model bundles",
			Usage:       "facegate models [directory]",
			Run:         cmdModels,
		},
		"list": {
			Name:        "list",
			Description: "List enrolled visitors",
			Usage:       "facegate list",
			Run:         cmdList,
		},
		"remove": {
			Name:        "remove",
			Description: "Remove an enrolled visitor",
			Usage:       "facegate remove <subject>",
			Run:         cmdRemove,
		},
		"config": {
			Name:        "config",
			Description: "Show current configuration",
			Usage:       "facegate config",
			Run:         cmdConfig,
		},
		"version": {
			Name:        "version",
			Description: "Show version information",
			Usage:       "facegate version",
			Run:         cmdVersion,
		},
		"help": {
			Name:        "help",
			Description: "Show help information",
			Usage:       "facegate help [command]",
			Run:         cmdHelp,
		},
	}
}

func main() {
	configFile := flag.String("config", "", "Path to configuration file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	args := flag.Args()

	var err error
	if *configFile != "" {
		cfg, err = config.Load(*configFile)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not load config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	cfg.ExpandPaths()

	logLevel := cfg.Logging.Level
	if *debug {
		logLevel = "debug"
	}
	if err := logging.Init(logLevel, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not initialize file logging: %v\n", err)
	}

	logging.Debugf("facegate v%s starting", version)

	if len(args) < 1 {
		printUsage()
		os.Exit(0)
	}

	cmdName := args[0]
	cmd, ok := commands[cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmdName)
		printUsage()
		os.Exit(1)
	}

	if err := cmd.Run(args[1:]); err != nil {
		logging.WithError(err).Errorf("Command '%s' failed", cmdName)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("facegate - Visitor face registration and verification")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Usage: facegate [options] <command> [arguments]")
	fmt.Println("\nOptions:")
	fmt.Println("  -config <file>   Path to configuration file")
	fmt.Println("  -debug           Enable debug logging")
	fmt.Println("\nCommands:")
	for _, name := range []string{"register", "verify", "serve", "models", "list", "remove", "config", "version", "help"} {
		cmd := commands[name]
		fmt.Printf("  %-10s %s\n", cmd.Name, cmd.Description)
	}
	fmt.Println("\nExamples:")
	fmt.Println("  facegate models                      # Download model bundles")
	fmt.Println("  facegate register alice face.jpg     # Enroll 'alice'")
	fmt.Println("  facegate verify alice probe.jpg      # Verify a probe image")
	fmt.Println("\nRun 'facegate help <command>' for more information on a command.")
}

func cmdConfig(args []string) error {
	fmt.Println("Current Configuration:")
	fmt.Println("======================")
	fmt.Println()
	fmt.Println("[Camera]")
	fmt.Printf("  Device:            %s\n", cfg.Camera.Device)
	fmt.Printf("  Resolution:        %dx%d\n", cfg.Camera.Width, cfg.Camera.Height)
	fmt.Println()
	fmt.Println("[Guidance]")
	fmt.Printf("  Center X/Y:        %.2f / %.2f\n", cfg.Guidance.CenterThresholdX, cfg.Guidance.CenterThresholdY)
	fmt.Printf("  Face size:         %.2f - %.2f\n", cfg.Guidance.SizeMinThreshold, cfg.Guidance.SizeMaxThreshold)
	fmt.Println()
	fmt.Println("[Capture]")
	fmt.Printf("  Detection tick:    %d ms\n", cfg.Capture.DetectionIntervalMS)
	fmt.Printf("  Auto-capture hold: %d ms\n", cfg.Capture.AutoCaptureDelayMS)
	fmt.Printf("  Portrait ratio:    %.2f\n", cfg.Capture.TargetAspectRatio)
	fmt.Println()
	fmt.Println("[Matcher]")
	fmt.Printf("  Threshold:         %.2f\n", cfg.Matcher.Threshold)
	fmt.Printf("  Max distance:      %.2f\n", cfg.Matcher.MaxDistance)
	fmt.Println()
	fmt.Println("[Models]")
	fmt.Printf("  Path:              %s\n", cfg.Models.Path)
	fmt.Println()
	fmt.Println("[Storage]")
	fmt.Printf("  Data Dir:          %s\n", cfg.Storage.DataDir)
	fmt.Printf("  Encryption:        %t\n", cfg.Storage.EncryptionEnabled)
	fmt.Println()
	fmt.Println("[Server]")
	fmt.Printf("  Listen:            %s\n", cfg.Server.Listen)
	fmt.Println()
	fmt.Println("[Logging]")
	fmt.Printf("  Level:             %s\n", cfg.Logging.Level)
	fmt.Printf("  File:              %s\n", cfg.Logging.File)

	return nil
}

func cmdVersion(args []string) error {
	fmt.Printf("facegate v%s\n", version)
	fmt.Println("Visitor face registration and verification pipeline")
	return nil
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		printUsage()
		return nil
	}

	cmdName := args[0]
	cmd, ok := commands[cmdName]
	if !ok {
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	fmt.Printf("Command: %s\n", cmd.Name)
	fmt.Printf("Description: %s\n", cmd.Description)
	fmt.Printf("Usage: %s\n", cmd.Usage)

	switch cmdName {
	case "register":
		fmt.Println("\nRegistration runs the full guidance pipeline on the image:")
		fmt.Println("  the face must be sized and centered per the guidance")
		fmt.Println("  thresholds, held valid through the auto-capture delay, and")
		fmt.Println("  the portrait is cropped before it is stored.")
	case "verify":
		fmt.Println("\nVerification compares the probe image against the enrolled")
		fmt.Println("  descriptor and prints the confidence score as a percentage.")
	case "serve":
		fmt.Println("\nThe API exposes POST /api/verify taking a JSON body with a")
		fmt.Println("  base64 image and a 128-element reference descriptor.")
	}

	return nil
}
