// Command tracksim drives the tracking pipeline against a simulated
// radar scene: two maneuvering targets inside a square surveillance
// area, clutter, and missed detections, reporting mean position error and
// writing diagnostic plots/dashboard of the run. With -runs > 1 it repeats
// the scene under independent seeds and reports the mean position error
// across runs,
// writing plots/dashboard only for the last one.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"

	"github.com/oskarba/radartrack/internal/track/assoc"
	"github.com/oskarba/radartrack/internal/track/gate"
	"github.com/oskarba/radartrack/internal/track/initiate"
	"github.com/oskarba/radartrack/internal/track/manager"
	"github.com/oskarba/radartrack/internal/track/motion"
	"github.com/oskarba/radartrack/internal/track/terminate"
	"github.com/oskarba/radartrack/internal/track/types"
	"github.com/oskarba/radartrack/internal/trackconfig"
	"github.com/oskarba/radartrack/internal/tracksim"
	"github.com/oskarba/radartrack/internal/trackstore"
	"github.com/oskarba/radartrack/internal/trackviz"
	"github.com/oskarba/radartrack/internal/version"
	"gonum.org/v1/gonum/mat"
)

var (
	versionFlag = flag.Bool("version", false, "print version information and exit")
	configFile  = flag.String("config", trackconfig.DefaultConfigPath, "path to JSON tuning configuration file")
	seed        = flag.Int64("seed", 1, "random seed driving the first simulated scene")
	runs       = flag.Int("runs", 1, "number of independent runs to average RMSE over")
	scans      = flag.Int("scans", 150, "number of scans to simulate per run")
	dt         = flag.Float64("dt", 1.0, "seconds between scans")
	radarRange = flag.Float64("radar-range", 1000, "half-width of the square surveillance area, meters")
	measVar    = flag.Float64("meas-var", 50, "per-axis measurement noise variance")
	plotsDir   = flag.String("plots-dir", "tracksim-out", "directory to write diagnostic plots and dashboard")
	dbPath     = flag.String("db", "", "optional sqlite path to persist the last run (skipped if empty)")
)

type runResult struct {
	rmseA, rmseB []trackviz.RMSESample
	scans        [][]types.Measurement
	file         *types.TrackFile
	runID        string
}

func main() {
	flag.Parse()
	if *versionFlag {
		fmt.Printf("tracksim %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	cfg, err := trackconfig.LoadTuningConfig(*configFile)
	if err != nil {
		log.Printf("could not load %s, falling back to defaults: %v", *configFile, err)
		cfg = trackconfig.EmptyTuningConfig()
	}

	var last runResult
	var meanErrSum float64
	var meanErrCount int

	for r := 0; r < *runs; r++ {
		result, err := simulateOnce(cfg, *seed+int64(r))
		if err != nil {
			log.Fatalf("run %d: %v", r, err)
		}
		for _, s := range append(append([]trackviz.RMSESample{}, result.rmseA...), result.rmseB...) {
			meanErrSum += s.Error
			meanErrCount++
		}
		last = result
	}

	if *dbPath != "" {
		store, err := trackstore.Open(*dbPath)
		if err != nil {
			log.Fatalf("open store: %v", err)
		}
		defer store.Close()
		for k, meas := range last.scans {
			if err := store.SaveScan(last.runID, k, float64(k)**dt, meas); err != nil {
				log.Printf("scan %d: save: %v", k, err)
			}
		}
		if err := store.SaveTrackFile(last.runID, last.file); err != nil {
			log.Printf("save track file: %v", err)
		}
	}

	if err := os.MkdirAll(*plotsDir, 0o755); err != nil {
		log.Fatalf("create plots dir: %v", err)
	}
	if _, err := trackviz.PlotRMSE(*plotsDir, "rmse.png", map[string][]trackviz.RMSESample{
		"target-1": last.rmseA,
		"target-2": last.rmseB,
	}); err != nil {
		log.Printf("plot rmse: %v", err)
	}
	if _, err := trackviz.PlotTrackPositions(*plotsDir, "tracks.png", last.file); err != nil {
		log.Printf("plot track positions: %v", err)
	}
	if _, err := trackviz.WriteDashboard(*plotsDir, "dashboard.html", last.scans, last.file); err != nil {
		log.Printf("write dashboard: %v", err)
	}

	meanErr := 0.0
	if meanErrCount > 0 {
		meanErr = meanErrSum / float64(meanErrCount)
	}
	fmt.Printf("%d run(s) of %d scans: mean position error %.3fm, last run %d confirmed tracks (run ID %s), output in %s\n",
		*runs, *scans, meanErr, len(last.file.Confirmed()), last.runID, *plotsDir)
}

func simulateOnce(cfg *trackconfig.TuningConfig, runSeed int64) (runResult, error) {
	mgr, radar, err := buildPipeline(cfg)
	if err != nil {
		return runResult{}, fmt.Errorf("build pipeline: %w", err)
	}

	model, err := motion.New(cfg.GetProcessNoise())
	if err != nil {
		return runResult{}, fmt.Errorf("motion.New: %w", err)
	}
	traj, err := tracksim.NewTrajectoryChange(model, 0.05, 0.3)
	if err != nil {
		return runResult{}, fmt.Errorf("NewTrajectoryChange: %w", err)
	}

	rng := rand.New(rand.NewSource(runSeed))
	x0a := mat.NewVecDense(4, []float64{100, 4, 0, 5})
	x0b := mat.NewVecDense(4, []float64{-100, -4, 0, -5})

	trajA, err := traj.GenerateTrajectory(rng, x0a, *dt, *scans-1)
	if err != nil {
		return runResult{}, fmt.Errorf("generate trajectory a: %w", err)
	}
	trajB, err := traj.GenerateTrajectory(rng, x0b, *dt, *scans-1)
	if err != nil {
		return runResult{}, fmt.Errorf("generate trajectory b: %w", err)
	}

	result := runResult{
		file:  mgr.TrackFile(),
		runID: fmt.Sprintf("tracksim-run-%d", runSeed),
	}
	result.rmseA = make([]trackviz.RMSESample, 0, *scans)
	result.rmseB = make([]trackviz.RMSESample, 0, *scans)

	for k := 0; k < *scans; k++ {
		timestamp := float64(k) * *dt
		truths := []tracksim.TruePosition{
			tracksim.TruePositionOf(trajA[k]),
			tracksim.TruePositionOf(trajB[k]),
		}
		meas, err := radar.GenerateMeasurements(rng, truths, timestamp, k)
		if err != nil {
			return runResult{}, fmt.Errorf("scan %d: generate measurements: %w", k, err)
		}
		result.scans = append(result.scans, meas)

		if err := mgr.Step(meas, timestamp, k); err != nil {
			log.Printf("scan %d: step: %v", k, err)
			continue
		}

		result.rmseA = append(result.rmseA, nearestTrackError(mgr, truths[0], k, timestamp))
		result.rmseB = append(result.rmseB, nearestTrackError(mgr, truths[1], k, timestamp))
	}

	return result, nil
}

func buildPipeline(cfg *trackconfig.TuningConfig) (*manager.Manager, *tracksim.SquareRadar, error) {
	model, err := motion.New(cfg.GetProcessNoise())
	if err != nil {
		return nil, nil, err
	}
	g, err := gate.New(cfg.GetGateProbability(), cfg.GetVelocityCap())
	if err != nil {
		return nil, nil, err
	}
	// pi21 (birth probability within the Markov chain itself) is left at
	// 0: new tracks are seeded exclusively by the initiator, not by the
	// existence recursion, matching the reference simulator's p21=0.
	updater, err := assoc.NewIPDAFUpdater(model, g, cfg.GetDetectionProbability(), cfg.GetClutterRate(), cfg.GetScanArea(), cfg.GetExistencePersistence(), 0)
	if err != nil {
		return nil, nil, err
	}
	promote, drop := cfg.GetIPDAInitiationThreshold(), cfg.GetIPDATerminationThreshold()
	seedExistence := drop + (promote-drop)/2
	init, err := initiate.NewIPDAInitiator(updater, promote, drop, seedExistence, cfg.GetAllowDoubleUse(), 100, 25)
	if err != nil {
		return nil, nil, err
	}
	term, err := terminate.NewIPDATerminator(drop)
	if err != nil {
		return nil, nil, err
	}
	mgr := manager.New(updater, init, term, manager.Config{AllowDoubleUse: cfg.GetAllowDoubleUse()})

	measCov := mat.NewDense(2, 2, []float64{*measVar, 0, 0, *measVar})
	radar, err := tracksim.NewSquareRadar(*radarRange, cfg.GetClutterRate()/cfg.GetScanArea(), cfg.GetDetectionProbability(), measCov)
	if err != nil {
		return nil, nil, err
	}
	return mgr, radar, nil
}

func nearestTrackError(mgr *manager.Manager, truth tracksim.TruePosition, scanIndex int, timestamp float64) trackviz.RMSESample {
	best := -1.0
	for _, track := range mgr.TrackFile().Confirmed() {
		if len(track.Estimates) == 0 {
			continue
		}
		last := track.Estimates[len(track.Estimates)-1]
		dn := last.North() - truth.North
		de := last.East() - truth.East
		dist := dn*dn + de*de
		if best < 0 || dist < best {
			best = dist
		}
	}
	if best < 0 {
		return trackviz.RMSESample{ScanIndex: scanIndex, Timestamp: timestamp, Error: 0}
	}
	return trackviz.RMSESample{ScanIndex: scanIndex, Timestamp: timestamp, Error: math.Sqrt(best)}
}
