// Package replay records episodes as a seed plus an action stream and
// re-simulates them to check that the engine still reproduces the run.
//
// File layout: the 4-byte magic "LVRP", one format version byte, then a
// zstd stream holding one msgpack-encoded Record.
package replay

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/Zordux/Last-Vector/internal/config"
	"github.com/Zordux/Last-Vector/internal/sim"
)

// FormatVersion is bumped whenever Record changes incompatibly.
const FormatVersion = 1

var magic = [4]byte{'L', 'V', 'R', 'P'}

var (
	// ErrDigestMismatch means re-simulation diverged from the recording.
	ErrDigestMismatch = errors.New("replay: digest mismatch")

	// ErrConfigMismatch means the engine runs a different config than the
	// one recorded.
	ErrConfigMismatch = errors.New("replay: config mismatch")

	// ErrBadFormat covers wrong magic, unknown versions and corrupt payloads.
	ErrBadFormat = errors.New("replay: bad format")
)

// Record is one recorded episode.
type Record struct {
	Version      int          `msgpack:"version"`
	Seed         uint64       `msgpack:"seed"`
	Preset       string       `msgpack:"preset"`
	Policy       string       `msgpack:"policy"`
	Config       []byte       `msgpack:"config"` // YAML of the exact SimConfig
	ConfigDigest uint64       `msgpack:"config_digest"`
	Actions      [][8]float64 `msgpack:"actions"`
	FinalTick    uint64       `msgpack:"final_tick"`
	FinalDigest  uint64       `msgpack:"final_digest"`
	Kills        int          `msgpack:"kills"`
	Recorded     time.Time    `msgpack:"recorded"`
}

// SimConfig decodes the recorded config.
func (r *Record) SimConfig() (config.SimConfig, error) {
	if xxhash.Sum64(r.Config) != r.ConfigDigest {
		return config.SimConfig{}, fmt.Errorf("%w: embedded config does not match its digest", ErrBadFormat)
	}
	cfg, err := config.ParseSim(r.Config)
	if err != nil {
		return config.SimConfig{}, fmt.Errorf("replay: recorded config: %w", err)
	}
	return cfg, nil
}

// Engine builds a fresh engine for the recorded config.
func (r *Record) Engine(opts ...sim.Option) (*sim.Engine, error) {
	cfg, err := r.SimConfig()
	if err != nil {
		return nil, err
	}
	return sim.New(cfg, opts...)
}

// Duration is the simulated length of the recording.
func (r *Record) Duration(tickRate int) time.Duration {
	if tickRate <= 0 {
		return 0
	}
	return time.Duration(float64(r.FinalTick) / float64(tickRate) * float64(time.Second))
}

// ConfigDigest hashes the YAML form of cfg.
func ConfigDigest(cfg config.SimConfig) (uint64, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return 0, fmt.Errorf("replay: encode config: %w", err)
	}
	return xxhash.Sum64(data), nil
}

// Recorder accumulates the actions of one episode.
type Recorder struct {
	rec Record
}

// NewRecorder starts a recording for an episode reset with seed.
func NewRecorder(cfg config.SimConfig, seed uint64, preset, policy string) (*Recorder, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("replay: encode config: %w", err)
	}
	return &Recorder{
		rec: Record{
			Version:      FormatVersion,
			Seed:         seed,
			Preset:       preset,
			Policy:       policy,
			Config:       data,
			ConfigDigest: xxhash.Sum64(data),
		},
	}, nil
}

// Add appends one action, in the form the engine will see it.
func (r *Recorder) Add(a sim.Action) {
	r.rec.Actions = append(r.rec.Actions, a.Sanitized().Values())
}

// Len returns the number of recorded actions.
func (r *Recorder) Len() int {
	return len(r.rec.Actions)
}

// Finish stamps the engine's final state and returns the record.
// The recorder must not be used afterwards.
func (r *Recorder) Finish(e *sim.Engine) *Record {
	w := e.Snapshot()
	r.rec.FinalTick = w.Tick
	r.rec.FinalDigest = e.Digest()
	r.rec.Kills = w.Stats.Kills
	r.rec.Recorded = time.Now().UTC()
	return &r.rec
}

// Result summarizes a verified replay.
type Result struct {
	Ticks      uint64
	Kills      int
	Digest     uint64
	Terminated bool
	Truncated  bool
}

// Verify resets e with the recorded seed, replays every action and compares
// the final tick and world digest. e must have been built from the recorded
// config.
func Verify(e *sim.Engine, rec *Record) (Result, error) {
	digest, err := ConfigDigest(e.Config())
	if err != nil {
		return Result{}, err
	}
	if digest != rec.ConfigDigest {
		return Result{}, fmt.Errorf("%w: engine %016x, recording %016x", ErrConfigMismatch, digest, rec.ConfigDigest)
	}

	e.Reset(rec.Seed)
	var res Result
	for _, values := range rec.Actions {
		step := e.Step(sim.ParseAction(values[:]))
		res.Terminated = step.Terminated
		res.Truncated = step.Truncated
	}

	w := e.Snapshot()
	res.Ticks = w.Tick
	res.Kills = w.Stats.Kills
	res.Digest = e.Digest()

	if res.Ticks != rec.FinalTick || res.Digest != rec.FinalDigest {
		return res, fmt.Errorf("%w: tick %d digest %016x, recorded tick %d digest %016x",
			ErrDigestMismatch, res.Ticks, res.Digest, rec.FinalTick, rec.FinalDigest)
	}
	return res, nil
}

// Save writes rec to w.
func Save(w io.Writer, rec *Record) error {
	header := append(magic[:], byte(FormatVersion))
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("replay: write header: %w", err)
	}

	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("replay: create compressor: %w", err)
	}
	if err := msgpack.NewEncoder(zw).Encode(rec); err != nil {
		zw.Close()
		return fmt.Errorf("replay: encode: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("replay: compress: %w", err)
	}
	return nil
}

// Load reads a record written by Save.
func Load(r io.Reader) (*Record, error) {
	var header [5]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("%w: short header: %v", ErrBadFormat, err)
	}
	if [4]byte(header[:4]) != magic {
		return nil, fmt.Errorf("%w: not a replay file", ErrBadFormat)
	}
	if header[4] != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadFormat, header[4])
	}

	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	defer zr.Close()

	var rec Record
	if err := msgpack.NewDecoder(zr).Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrBadFormat, err)
	}
	if rec.Version != FormatVersion {
		return nil, fmt.Errorf("%w: record version %d", ErrBadFormat, rec.Version)
	}
	return &rec, nil
}

// SaveFile writes rec to path, replacing any existing file.
func SaveFile(path string, rec *Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	bw := bufio.NewWriter(f)
	if err := Save(bw, rec); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("replay: %w", err)
	}
	return f.Close()
}

// LoadFile reads a record from path.
func LoadFile(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	defer f.Close()
	return Load(bufio.NewReader(f))
}
