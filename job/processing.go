package job

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"vermux/compose"
	"vermux/config"
	"vermux/credentials"
	"vermux/delivery"
	"vermux/failures"
	"vermux/logger"
	"vermux/models"
	"vermux/success"
	"vermux/utils"
)

var (
	pipeline *compose.Pipeline
)

// Configure wires the job processor to a composition pipeline. Called once
// at startup; tests pass a pipeline with a fake engine.
func Configure(cfg compose.Config, engine compose.Engine) {
	pipeline = compose.NewPipeline(cfg, engine)
}

// Process runs a single queued render job from its directory.
func Process(ctx context.Context, jobDir string) error {
	instr, err := ReadInstructions(jobDir)
	if err != nil {
		logger.Errorf("Failed to read instructions for %s: %v", jobDir, err)
		token := filepath.Base(jobDir)
		storeFailure(Instructions{Token: token}, "validation", err, "", 0)
		os.RemoveAll(jobDir)
		return err
	}

	logger.Infof("Processing render job %s", instr.Token)

	req := compose.Request{
		VideoPath:     filepath.Join(jobDir, instr.VideoFile),
		AudioPath:     filepath.Join(jobDir, instr.AudioFile),
		Caption:       instr.Caption,
		Quality:       instr.Quality,
		DurationMatch: instr.DurationMatch,
	}
	if instr.SubtitleFile != "" {
		req.SubtitlePath = filepath.Join(jobDir, instr.SubtitleFile)
	}

	result, err := pipeline.Run(ctx, req, jobDir)
	if err != nil {
		kind := compose.KindOf(err)
		storeFailure(instr, kind.String(), err, compose.DiagnosticsOf(err), compose.ElapsedOf(err))
		sendCallback(instr, &models.CallbackClaims{
			Issuer:    "vermux",
			Token:     instr.Token,
			IssuedAt:  time.Now().Unix(),
			Status:    "failed",
			ElapsedMS: compose.ElapsedOf(err).Milliseconds(),
			Error:     err.Error(),
		})
		os.RemoveAll(jobDir)
		return err
	}

	deliveries, deliverErr := deliverResult(ctx, instr, result.OutputPath)
	if deliverErr != nil {
		logger.Errorf("Failed to deliver result for %s: %v", instr.Token, deliverErr)
		storeFailure(instr, "delivery", deliverErr, "", result.Elapsed)
		result.Cleanup()
		os.RemoveAll(jobDir)
		return deliverErr
	}

	if err := success.Store(instr.Token, instr, result.Elapsed, result.Size, deliveries); err != nil {
		// Don't fail the job for record storage errors
		logger.Errorf("Failed to store success record for %s: %v", instr.Token, err)
	}

	sendCallback(instr, &models.CallbackClaims{
		Issuer:    "vermux",
		Token:     instr.Token,
		IssuedAt:  time.Now().Unix(),
		Status:    "completed",
		ElapsedMS: result.Elapsed.Milliseconds(),
		SizeBytes: result.Size,
	})

	result.Cleanup()
	if err := os.RemoveAll(jobDir); err != nil {
		logger.Errorf("Failed to cleanup job directory %s: %v", jobDir, err)
	}

	logger.Infof("Successfully processed render job %s", instr.Token)
	return nil
}

// deliverResult ships the rendered artifact to every destination the job
// names, defaulting to the local serving tree when none are given. Returns
// the number of completed deliveries.
func deliverResult(ctx context.Context, instr Instructions, outputPath string) (int, error) {
	jobs := instr.Job.Deliveries
	if len(jobs) == 0 {
		jobs = []models.DeliveryJob{{Type: "directServe"}}
	}

	for _, dj := range jobs {
		accessInfo, err := resolveAccessInfo(dj, instr)
		if err != nil {
			return 0, err
		}

		reader, err := os.Open(outputPath)
		if err != nil {
			return 0, fmt.Errorf("failed to open rendered output: %w", err)
		}

		err = delivery.Deliver(ctx, dj.Type, accessInfo, reader)
		reader.Close()
		if err != nil {
			return 0, fmt.Errorf("failed to deliver %s via %s: %w", instr.Token, dj.Type, err)
		}
	}
	return len(jobs), nil
}

// resolveAccessInfo merges registered or inline credentials with the
// routing keys every backend expects.
func resolveAccessInfo(dj models.DeliveryJob, instr Instructions) (map[string]string, error) {
	accessInfo := make(map[string]string)

	if dj.AccessKey != "" {
		creds, err := credentials.Get(dj.AccessKey)
		if err != nil {
			return nil, fmt.Errorf("resolve credentials for %s: %w", dj.Type, err)
		}
		for k, v := range creds {
			accessInfo[k] = v
		}
	}
	for k, v := range dj.Credentials {
		accessInfo[k] = v
	}

	accessInfo["filename"] = instr.Token + ".mp4"
	accessInfo["folder"] = instr.Job.SubDir

	if dj.Type == "directServe" {
		accessInfo["baseDir"] = config.GetDirectServeBaseDir()
	}
	return accessInfo, nil
}

// storeFailure records a processing failure in the failure store
func storeFailure(instr Instructions, kind string, err error, diagnostics string, elapsed time.Duration) {
	if instr.Token == "" {
		logger.Errorf("Cannot store failure: missing token")
		return
	}
	if storeErr := failures.Store(instr.Token, kind, err, diagnostics, elapsed, instr); storeErr != nil {
		logger.Errorf("Failed to store failure for token %s: %v", instr.Token, storeErr)
	}
}

// sendCallback notifies the job's callback URL, if configured. Callback
// errors never fail the job.
func sendCallback(instr Instructions, claims *models.CallbackClaims) {
	if instr.Job.CallbackURL == "" {
		return
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		logger.Errorf("Failed to marshal callback payload for %s: %v", instr.Token, err)
		return
	}

	req, err := http.NewRequest(http.MethodPost, instr.Job.CallbackURL, bytes.NewBuffer(payload))
	if err != nil {
		logger.Errorf("Failed to create callback request for %s: %v", instr.Token, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Vermux/1.0")
	for key, value := range instr.Job.CallbackHeaders {
		req.Header.Set(key, value)
	}

	// Attach a verifiable signature when a callback secret is configured.
	if secret := config.GetCallbackSecret(); len(secret) > 0 {
		if signed, err := utils.SignCallback(claims, secret); err == nil {
			req.Header.Set("Authorization", "Bearer "+signed)
		} else {
			logger.Warnf("Failed to sign callback for %s: %v", instr.Token, err)
		}
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		logger.Errorf("Callback request failed for %s: %v", instr.Token, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Errorf("Callback for %s returned non-2xx status: %d", instr.Token, resp.StatusCode)
		return
	}
	logger.Infof("Sent callback for %s to %s", instr.Token, instr.Job.CallbackURL)
}
