package stt

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"go.qspeak.app/qspeak/state"
)

const whisperModelBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/"

// minTranscribableSamples rejects recordings shorter than 1.25s at 16 kHz,
// which whisper turns into hallucinated text.
const minTranscribableSamples = 20_000

// WhisperLocal transcribes with a local whisper.cpp install. Models are
// ggml files stored in ModelDir and downloaded on demand.
type WhisperLocal struct {
	modelDir string
	binPath  string
}

// NewWhisperLocal locates the whisper.cpp binary and prepares the model
// directory. A missing binary is not an error until a job runs.
func NewWhisperLocal(modelDir string) (*WhisperLocal, error) {
	if err := os.MkdirAll(modelDir, 0o755); err != nil {
		return nil, fmt.Errorf("create model dir: %w", err)
	}
	return &WhisperLocal{
		modelDir: modelDir,
		binPath:  findWhisperBinary(),
	}, nil
}

func (w *WhisperLocal) Name() state.TranscriptionProvider { return state.ProviderWhisperLocal }

// ModelPath returns where a ggml model file lives on disk.
func (w *WhisperLocal) ModelPath(model string) string {
	return filepath.Join(w.modelDir, model)
}

// ModelDownloaded reports whether the model file is present.
func (w *WhisperLocal) ModelDownloaded(model string) bool {
	_, err := os.Stat(w.ModelPath(model))
	return err == nil
}

// DeleteModel removes a downloaded model file.
func (w *WhisperLocal) DeleteModel(model string) error {
	return os.Remove(w.ModelPath(model))
}

// DownloadModel fetches a ggml model, reporting progress as a percentage.
// Cancel through the context; a partial download leaves no model file.
func (w *WhisperLocal) DownloadModel(ctx context.Context, model string, progress func(percent int)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, whisperModelBaseURL+model, nil)
	if err != nil {
		return fmt.Errorf("create download request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download model: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download model: unexpected status %s", resp.Status)
	}

	tmpPath := w.ModelPath(model) + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath)
	}()

	var downloaded int64
	lastPercent := -1
	buf := make([]byte, 32*1024)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write model file: %w", werr)
			}
			downloaded += int64(n)
			if resp.ContentLength > 0 && progress != nil {
				pct := int(downloaded * 100 / resp.ContentLength)
				if pct > lastPercent {
					lastPercent = pct
					progress(pct)
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read model download: %w", err)
		}
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close model file: %w", err)
	}
	if err := os.Rename(tmpPath, w.ModelPath(model)); err != nil {
		return fmt.Errorf("move model into place: %w", err)
	}
	return nil
}

func (w *WhisperLocal) Transcribe(ctx context.Context, req Request) (string, error) {
	samples, err := wavSampleCount(req.AudioPath)
	if err != nil {
		return "", err
	}
	if samples < minTranscribableSamples {
		return "", ErrAudioTooShort
	}

	modelPath := w.ModelPath(req.Model)
	if _, err := os.Stat(modelPath); err != nil {
		return "", fmt.Errorf("model %s is not downloaded", req.Model)
	}

	binPath := w.binPath
	if binPath == "" {
		binPath = findWhisperBinary()
	}
	if binPath == "" {
		return "", fmt.Errorf("whisper.cpp binary not found, please install whisper.cpp")
	}

	args := []string{
		"-m", modelPath,
		"-f", req.AudioPath,
		"-oj",
		"--no-prints",
		"--beam-size", "1",
	}
	if !req.Language.IsAuto() {
		args = append(args, "-l", req.Language.Code())
	}

	cmd := exec.CommandContext(ctx, binPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("whisper.cpp failed: %w, stderr: %s", err, stderr.String())
	}

	var out whisperOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		// Older builds print plain text despite -oj.
		return stdout.String(), nil
	}
	var text string
	for _, seg := range out.Transcription {
		text += seg.Text
	}
	return text, nil
}

func (w *WhisperLocal) Close() error { return nil }

// wavSampleCount reads the data chunk length of a 16-bit PCM WAV file.
func wavSampleCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	header := make([]byte, 12)
	if _, err := io.ReadFull(f, header); err != nil {
		return 0, fmt.Errorf("read wav header: %w", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return 0, fmt.Errorf("%s is not a wav file", path)
	}

	chunk := make([]byte, 8)
	for {
		if _, err := io.ReadFull(f, chunk); err != nil {
			return 0, fmt.Errorf("read wav chunk: %w", err)
		}
		size := binary.LittleEndian.Uint32(chunk[4:8])
		if string(chunk[0:4]) == "data" {
			return int(size / 2), nil
		}
		if _, err := f.Seek(int64(size), io.SeekCurrent); err != nil {
			return 0, fmt.Errorf("seek wav chunk: %w", err)
		}
	}
}

func findWhisperBinary() string {
	// whisper-cli is the Homebrew name.
	names := []string{"whisper-cli", "whisper-cpp", "whisper", "main"}

	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	homeDir, _ := os.UserHomeDir()
	locations := []string{
		"/opt/homebrew/bin",
		"/usr/local/bin",
		filepath.Join(homeDir, ".local", "bin"),
		filepath.Join(homeDir, "whisper.cpp"),
	}
	for _, loc := range locations {
		for _, name := range names {
			path := filepath.Join(loc, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}

	if runtime.GOOS == "darwin" {
		execPath, _ := os.Executable()
		bundlePath := filepath.Join(filepath.Dir(execPath), "..", "Resources", "whisper-cli")
		if _, err := os.Stat(bundlePath); err == nil {
			return bundlePath
		}
	}
	return ""
}

type whisperOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Text string `json:"text"`
	} `json:"transcription"`
}
