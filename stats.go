package main

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"snake-matrix/game/types"
)

// GroupSize is how many records of one compression level are folded into a
// single summary record once that many have piled up.
const GroupSize = 100

// GameStats keeps the rounds played this session and answers aggregate
// questions about them. Nothing is written to disk.
type GameStats struct {
	Games []GameRecord
	mutex sync.RWMutex
}

// GameRecord is one round, or a summary of many once compressed.
type GameRecord struct {
	ID               uuid.UUID
	Outcome          types.Status
	StartTime        time.Time
	EndTime          time.Time
	Score            int
	Ticks            int
	CompressionIndex int // 0 for a single round, >0 for groups
	GamesCount       int
	Wins             int
	AverageScore     float64
	MedianScore      float64
	MaxScore         int
	MinScore         int
	AverageDuration  float64
	MaxDuration      float64
	MinDuration      float64
}

func NewGameStats() *GameStats {
	return &GameStats{Games: make([]GameRecord, 0)}
}

// AddGame records a finished round.
func (s *GameStats) AddGame(id uuid.UUID, outcome types.Status, score, ticks int, startTime, endTime time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	wins := 0
	if outcome == types.Won {
		wins = 1
	}
	duration := endTime.Sub(startTime).Seconds()
	s.Games = append(s.Games, GameRecord{
		ID:              id,
		Outcome:         outcome,
		StartTime:       startTime,
		EndTime:         endTime,
		Score:           score,
		Ticks:           ticks,
		GamesCount:      1,
		Wins:            wins,
		AverageScore:    float64(score),
		MedianScore:     float64(score),
		MaxScore:        score,
		MinScore:        score,
		AverageDuration: duration,
		MaxDuration:     duration,
		MinDuration:     duration,
	})

	s.groupGames()
}

// groupGames folds every full batch of GroupSize records at one compression
// level into a record of the next level.
func (s *GameStats) groupGames() {
	sort.SliceStable(s.Games, func(i, j int) bool {
		if s.Games[i].CompressionIndex != s.Games[j].CompressionIndex {
			return s.Games[i].CompressionIndex > s.Games[j].CompressionIndex
		}
		return s.Games[i].StartTime.Before(s.Games[j].StartTime)
	})

	for level := 0; ; level++ {
		var records, others []GameRecord
		for _, g := range s.Games {
			if g.CompressionIndex == level {
				records = append(records, g)
			} else {
				others = append(others, g)
			}
		}
		if len(records) < GroupSize {
			break
		}

		var grouped []GameRecord
		for i := 0; i < len(records); i += GroupSize {
			if i+GroupSize > len(records) {
				grouped = append(grouped, records[i:]...)
				break
			}
			grouped = append(grouped, summarize(records[i:i+GroupSize], level+1))
		}
		s.Games = append(others, grouped...)
	}
}

func summarize(group []GameRecord, level int) GameRecord {
	out := GameRecord{
		CompressionIndex: level,
		StartTime:        group[0].StartTime,
		EndTime:          group[0].EndTime,
		MaxScore:         group[0].MaxScore,
		MinScore:         group[0].MinScore,
		MaxDuration:      group[0].MaxDuration,
		MinDuration:      group[0].MinDuration,
	}
	var scores []float64
	for _, g := range group {
		out.MaxScore = max(out.MaxScore, g.MaxScore)
		out.MinScore = min(out.MinScore, g.MinScore)
		out.MaxDuration = max(out.MaxDuration, g.MaxDuration)
		out.MinDuration = min(out.MinDuration, g.MinDuration)
		if g.StartTime.Before(out.StartTime) {
			out.StartTime = g.StartTime
		}
		if g.EndTime.After(out.EndTime) {
			out.EndTime = g.EndTime
		}
		out.GamesCount += g.GamesCount
		out.Wins += g.Wins
		scores = appendWeighted(scores, g)
	}
	out.AverageScore = weightedMean(group, func(g GameRecord) float64 { return g.AverageScore })
	out.AverageDuration = weightedMean(group, func(g GameRecord) float64 { return g.AverageDuration })
	out.MedianScore = median(scores)
	return out
}

// appendWeighted repeats a record's median once per round it stands for.
func appendWeighted(scores []float64, g GameRecord) []float64 {
	for i := 0; i < g.GamesCount; i++ {
		scores = append(scores, g.MedianScore)
	}
	return scores
}

func median(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	sort.Float64s(scores)
	if len(scores)%2 == 0 {
		return (scores[len(scores)/2-1] + scores[len(scores)/2]) / 2
	}
	return scores[len(scores)/2]
}

// Last returns the most recent single-round record.
func (s *GameStats) Last() (GameRecord, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var last GameRecord
	found := false
	for _, g := range s.Games {
		if g.CompressionIndex == 0 && (!found || !g.EndTime.Before(last.EndTime)) {
			last, found = g, true
		}
	}
	return last, found
}

func (s *GameStats) GetGamesPlayed() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	total := 0
	for _, g := range s.Games {
		total += g.GamesCount
	}
	return total
}

func (s *GameStats) GetWins() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	wins := 0
	for _, g := range s.Games {
		wins += g.Wins
	}
	return wins
}

func (s *GameStats) GetMaxScore() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	best := 0
	for _, g := range s.Games {
		best = max(best, g.MaxScore)
	}
	return best
}

func (s *GameStats) GetAverageScore() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return weightedMean(s.Games, func(g GameRecord) float64 { return g.AverageScore })
}

// GetMedianScore is exact until records get grouped, then approximate.
func (s *GameStats) GetMedianScore() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var scores []float64
	for _, g := range s.Games {
		scores = appendWeighted(scores, g)
	}
	return median(scores)
}

// GetAverageDuration is in seconds.
func (s *GameStats) GetAverageDuration() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return weightedMean(s.Games, func(g GameRecord) float64 { return g.AverageDuration })
}

// weightedMean averages a per-record value, weighting each record by the
// rounds it stands for.
func weightedMean(records []GameRecord, value func(GameRecord) float64) float64 {
	if len(records) == 0 {
		return 0
	}
	values := make([]float64, len(records))
	weights := make([]float64, len(records))
	for i, g := range records {
		values[i] = value(g)
		weights[i] = float64(g.GamesCount)
	}
	return stat.Mean(values, weights)
}

// Summary is a snapshot of the aggregates, handy for drawing and logging.
type Summary struct {
	Games           int
	Wins            int
	MaxScore        int
	AverageScore    float64
	MedianScore     float64
	AverageDuration float64
}

func (s *GameStats) Summary() Summary {
	return Summary{
		Games:           s.GetGamesPlayed(),
		Wins:            s.GetWins(),
		MaxScore:        s.GetMaxScore(),
		AverageScore:    s.GetAverageScore(),
		MedianScore:     s.GetMedianScore(),
		AverageDuration: s.GetAverageDuration(),
	}
}
