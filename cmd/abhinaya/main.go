package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/ayusman/abhinaya/internal/app"
	"github.com/ayusman/abhinaya/internal/capture"
	"github.com/ayusman/abhinaya/internal/gesture"
	"github.com/ayusman/abhinaya/internal/reference"
	"github.com/ayusman/abhinaya/internal/server"
	"github.com/ayusman/abhinaya/internal/server/api"
	"github.com/ayusman/abhinaya/internal/store"
)

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// dataDir returns ~/.abhinaya, creating it if needed.
func dataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dir := filepath.Join(homeDir, ".abhinaya")
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	return dir
}

func defaultDBPath() string {
	if p := os.Getenv("ABHINAYA_DB"); p != "" {
		return p
	}
	return filepath.Join(dataDir(), "abhinaya.db")
}

func openStore(path string) *store.Store {
	st, err := store.New(path)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	if version, dirty, err := st.SchemaVersion(); err == nil && dirty {
		log.Printf("Warning: database schema version %d is dirty", version)
	}
	return st
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command, args := os.Args[1], os.Args[2:]
	switch command {
	case "serve":
		runServe(args)
	case "import":
		runImport(args)
	case "list":
		runList(args)
	case "compare":
		runCompare(args)
	case "practice":
		runPractice(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Abhinaya - motion similarity scoring

Usage:
  abhinaya serve    [-addr :8080] [-db path] [-camera 0]
  abhinaya import   [-db path] -name NAME reference.json
  abhinaya list     [-db path]
  abhinaya compare  reference.json live.json
  abhinaya practice [-db path] [-camera 0] [-seconds 8] [-wait-motion] -ref ID

Environment:
  ABHINAYA_DB    database path (default ~/.abhinaya/abhinaya.db)
  ABHINAYA_ADDR  listen address for serve (default :8080)`)
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", getEnvOrDefault("ABHINAYA_ADDR", ":8080"), "listen address")
	dbPath := fs.String("db", "", "database path")
	camera := fs.String("camera", "0", "camera device ID or video file for the preview")
	fs.Parse(args)

	if *dbPath == "" {
		*dbPath = defaultDBPath()
	}
	st := openStore(*dbPath)
	defer st.Close()

	cfg := app.DefaultConfig()
	cfg.Store = st
	cfg.CameraSource = *camera
	application := app.New(cfg)
	defer application.Close()

	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Evaluator: application,
		Camera:    application.Camera(),
		Detector:  application.Detector(),
	})

	fmt.Printf("Starting server on %s\n", *addr)
	if err := srv.ListenAndServe(*addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func runImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	dbPath := fs.String("db", "", "database path")
	name := fs.String("name", "", "reference name (defaults to the file name)")
	fs.Parse(args)

	if fs.NArg() != 1 {
		log.Fatal("import needs exactly one reference file")
	}
	path := fs.Arg(0)
	if *name == "" {
		*name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	doc := readDocument(path)

	if *dbPath == "" {
		*dbPath = defaultDBPath()
	}
	st := openStore(*dbPath)
	defer st.Close()

	ref, err := api.Import(st, *name, doc)
	if err != nil {
		log.Fatalf("Failed to import %s: %v", path, err)
	}
	fmt.Printf("Imported %q as %s (%d frames, %.1fs)\n", ref.Name, ref.ID, ref.Frames, ref.Duration)
}

func runList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	dbPath := fs.String("db", "", "database path")
	fs.Parse(args)

	if *dbPath == "" {
		*dbPath = defaultDBPath()
	}
	st := openStore(*dbPath)
	defer st.Close()

	refs, err := st.References().List()
	if err != nil {
		log.Fatalf("Failed to list references: %v", err)
	}
	for _, ref := range refs {
		best := "-"
		if a, err := st.Attempts().Best(ref.ID); err == nil {
			best = fmt.Sprintf("%d", a.Score)
		}
		fmt.Printf("%s  %-24s %4d frames  best %s\n", ref.ID, ref.Name, ref.Frames, best)
	}
}

func runCompare(args []string) {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() != 2 {
		log.Fatal("compare needs a reference file and a live file")
	}

	ref, err := readDocument(fs.Arg(0)).Recording()
	if err != nil {
		log.Fatalf("Reference: %v", err)
	}
	live, err := readDocument(fs.Arg(1)).Recording()
	if err != nil {
		log.Fatalf("Live: %v", err)
	}

	res, fb := gesture.NewScorer().Compare(ref, live)
	printResult(res, fb)
}

func runPractice(args []string) {
	fs := flag.NewFlagSet("practice", flag.ExitOnError)
	dbPath := fs.String("db", "", "database path")
	refID := fs.String("ref", "", "reference ID")
	camera := fs.String("camera", "0", "camera device ID or video file")
	seconds := fs.Float64("seconds", 8, "recording length")
	fps := fs.Int("fps", capture.DefaultFPS, "capture frame rate")
	waitMotion := fs.Bool("wait-motion", false, "start recording when motion is detected")
	fs.Parse(args)

	if *refID == "" {
		log.Fatal("practice needs -ref")
	}
	if *dbPath == "" {
		*dbPath = defaultDBPath()
	}
	st := openStore(*dbPath)
	defer st.Close()

	cfg := app.DefaultConfig()
	cfg.Store = st
	cfg.CameraSource = *camera
	cfg.FPS = *fps
	cfg.StartOnMotion = *waitMotion
	application := app.New(cfg)
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Recording for %.1fs...\n", *seconds)
	out, err := application.Practice(ctx, *refID, time.Duration(*seconds*float64(time.Second)))
	if err != nil {
		log.Fatalf("Practice failed: %v", err)
	}
	fmt.Printf("Attempt %s\n", out.AttemptID)
	printResult(out.Result, out.Feedback)
}

func readDocument(path string) *reference.Document {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", path, err)
	}
	defer f.Close()

	doc, err := reference.Decode(f)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", path, err)
	}
	return doc
}

func printResult(res gesture.Result, fb gesture.Feedback) {
	fmt.Printf("Score: %d (%s)\n", res.Score, fb.Tier)
	for _, p := range fb.Phrases {
		fmt.Printf("  %s\n", p)
	}
	if res.Insufficient {
		fmt.Printf("Not enough tracked frames: %d reference, %d live\n", res.ReferenceFrames, res.LiveFrames)
		return
	}
	fmt.Printf("Frames: %d reference, %d live  avg distance %.4f  motion %.2f\n",
		res.ReferenceFrames, res.LiveFrames, res.AvgDistance, res.MotionRatio)
	if res.Mirrored {
		fmt.Println("Matched the mirrored performance")
	}
	if res.Capped {
		fmt.Println("Score capped for too little movement")
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.abhinaya/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	for _, p := range []string{"web", "../web", "../../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if absPath, err := filepath.Abs(p); err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".abhinaya", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
