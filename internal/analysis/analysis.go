// Package analysis evaluates positions with an external UCI engine such as
// Stockfish and converts scores into an evaluation bar.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/notnil/chess"
	"github.com/notnil/chess/uci"
	"go.uber.org/zap"
)

// MateScore is the centipawn value a forced mate is mapped to.
const MateScore = 10000

var (
	ErrNoKing       = errors.New("analysis: position is missing a king")
	ErrInvalidFEN   = errors.New("analysis: invalid FEN")
	ErrEngineClosed = errors.New("analysis: engine closed")
)

// Report is an engine verdict. ScoreCP is from White's point of view.
type Report struct {
	ScoreCP  int      `json:"scoreCp"`
	Mate     int      `json:"mate,omitempty"`
	BestMove string   `json:"bestMove,omitempty"`
	PV       []string `json:"pv,omitempty"`
	Depth    int      `json:"depth"`
}

type Analyzer interface {
	Analyze(ctx context.Context, fen string) (Report, error)
	Close() error
}

// UCIAnalyzer owns one engine process; calls are serialised.
type UCIAnalyzer struct {
	mu       sync.Mutex
	engine   *uci.Engine
	moveTime time.Duration
	logger   *zap.Logger
}

func NewUCIAnalyzer(path string, moveTime time.Duration, logger *zap.Logger) (*UCIAnalyzer, error) {
	eng, err := uci.New(path)
	if err != nil {
		return nil, fmt.Errorf("start engine %q: %w", path, err)
	}
	if err := eng.Run(uci.CmdUCI, uci.CmdIsReady, uci.CmdUCINewGame); err != nil {
		eng.Close()
		return nil, fmt.Errorf("initialise engine: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UCIAnalyzer{engine: eng, moveTime: moveTime, logger: logger}, nil
}

func (a *UCIAnalyzer) Analyze(ctx context.Context, fen string) (Report, error) {
	pos, err := decodePosition(fen)
	if err != nil {
		return Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.engine == nil {
		return Report{}, ErrEngineClosed
	}
	start := time.Now()
	if err := a.engine.Run(uci.CmdPosition{Position: pos}, uci.CmdGo{MoveTime: a.moveTime}); err != nil {
		return Report{}, fmt.Errorf("engine search: %w", err)
	}
	report := reportFrom(a.engine.SearchResults(), pos.Turn())
	a.logger.Debug("position analysed",
		zap.String("fen", fen),
		zap.Int("score_cp", report.ScoreCP),
		zap.String("best_move", report.BestMove),
		zap.Duration("took", time.Since(start)),
	)
	return report, nil
}

func (a *UCIAnalyzer) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.engine == nil {
		return nil
	}
	err := a.engine.Close()
	a.engine = nil
	return err
}

// decodePosition refuses king-less positions, which UCI engines cannot search.
func decodePosition(fen string) (*chess.Position, error) {
	pos := &chess.Position{}
	if err := pos.UnmarshalText([]byte(strings.TrimSpace(fen))); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	kings := 0
	for _, p := range pos.Board().SquareMap() {
		if p.Type() == chess.King {
			kings++
		}
	}
	if kings != 2 {
		return nil, ErrNoKing
	}
	return pos, nil
}

// reportFrom converts engine output, which scores from the side to move, to
// White's point of view.
func reportFrom(res uci.SearchResults, turn chess.Color) Report {
	score := res.Info.Score
	r := Report{
		ScoreCP: score.CP,
		Mate:    score.Mate,
		Depth:   res.Info.Depth,
	}
	if score.Mate != 0 {
		r.ScoreCP = MateScore
		if score.Mate < 0 {
			r.ScoreCP = -MateScore
		}
	}
	if turn == chess.Black {
		r.ScoreCP = -r.ScoreCP
		r.Mate = -r.Mate
	}
	if res.BestMove != nil {
		r.BestMove = res.BestMove.String()
	}
	for _, m := range res.Info.PV {
		r.PV = append(r.PV, m.String())
	}
	return r
}

// WhiteShare maps a report to White's share of the evaluation bar, 0 to 100.
// Pawn advantages are compressed with 1-exp(-s/3); mates fill the bar.
func WhiteShare(r Report) float64 {
	if r.ScoreCP >= MateScore {
		return 100
	}
	if r.ScoreCP <= -MateScore {
		return 0
	}
	pawns := float64(r.ScoreCP) / 100
	var scaled float64
	if pawns >= 0 {
		scaled = 1 - math.Exp(-pawns/3)
	} else {
		scaled = -1 + math.Exp(pawns/3)
	}
	scaled = math.Max(-1, math.Min(1, scaled))
	return (scaled + 1) * 50
}
