package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RoundRecord is one concluded round.
type RoundRecord struct {
	ID           string    `json:"id"`
	PlayerID     string    `json:"playerId"`
	Topic        string    `json:"topic"`
	Difficulty   string    `json:"difficulty"`
	Word         string    `json:"word"`
	Boss         bool      `json:"boss"`
	Won          bool      `json:"won"`
	TimedOut     bool      `json:"timedOut"`
	WrongGuesses int       `json:"wrongGuesses"`
	HintsBought  int       `json:"hintsBought"`
	Points       int       `json:"points"`
	FinishedAt   time.Time `json:"finishedAt"`
}

// InsertRound records a round. An empty ID gets a fresh UUID.
func (d *DB) InsertRound(ctx context.Context, r RoundRecord) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now()
	}
	_, err := d.SQL.ExecContext(ctx, d.rebind(`
        INSERT INTO rounds
            (id, player_id, topic, difficulty, word, boss, won, timed_out, wrong_guesses, hints_bought, points, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		r.ID, r.PlayerID, r.Topic, r.Difficulty, r.Word,
		boolInt(r.Boss), boolInt(r.Won), boolInt(r.TimedOut),
		r.WrongGuesses, r.HintsBought, r.Points, formatTime(r.FinishedAt),
	)
	return err
}

// Stats summarises a player's round history.
type Stats struct {
	Rounds     int `json:"rounds"`
	Wins       int `json:"wins"`
	BossRounds int `json:"bossRounds"`
	BossWins   int `json:"bossWins"`
	Points     int `json:"points"`
	BestRound  int `json:"bestRound"`
	Streak     int `json:"streak"` // consecutive wins ending with the latest round
}

// PlayerStats aggregates the rounds of one player.
func (d *DB) PlayerStats(ctx context.Context, player string) (Stats, error) {
	var s Stats
	err := d.SQL.QueryRowContext(ctx, d.rebind(`
        SELECT COUNT(*),
               COALESCE(SUM(won), 0),
               COALESCE(SUM(boss), 0),
               COALESCE(SUM(boss * won), 0),
               COALESCE(SUM(points), 0),
               COALESCE(MAX(points), 0)
        FROM rounds WHERE player_id=?`), player,
	).Scan(&s.Rounds, &s.Wins, &s.BossRounds, &s.BossWins, &s.Points, &s.BestRound)
	if err != nil {
		return Stats{}, err
	}

	rows, err := d.SQL.QueryContext(ctx, d.rebind(`
        SELECT won FROM rounds WHERE player_id=?
        ORDER BY finished_at DESC, id DESC LIMIT 500`), player)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var won int
		if err := rows.Scan(&won); err != nil {
			return Stats{}, err
		}
		if won == 0 {
			break
		}
		s.Streak++
	}
	return s, rows.Err()
}

// LeaderboardRow is one player's total over the leaderboard window.
type LeaderboardRow struct {
	PlayerID string `json:"playerId"`
	Username string `json:"username,omitempty"`
	Points   int    `json:"points"`
	Rounds   int    `json:"rounds"`
	Wins     int    `json:"wins"`
}

// Leaderboard ranks players by points earned in rounds finished at or after
// since. limit <= 0 means 20.
func (d *DB) Leaderboard(ctx context.Context, since time.Time, limit int) ([]LeaderboardRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.SQL.QueryContext(ctx, d.rebind(`
        SELECT r.player_id, COALESCE(u.username, ''), SUM(r.points) AS total, COUNT(*), SUM(r.won)
        FROM rounds r
        LEFT JOIN users u ON u.id = r.player_id
        WHERE r.finished_at >= ?
        GROUP BY r.player_id, u.username
        ORDER BY total DESC, COUNT(*) ASC, r.player_id ASC
        LIMIT ?`), formatTime(since), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LeaderboardRow, 0, limit)
	for rows.Next() {
		var r LeaderboardRow
		if err := rows.Scan(&r.PlayerID, &r.Username, &r.Points, &r.Rounds, &r.Wins); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ClaimRounds moves an anonymous player's history to a user account and
// returns how many rounds moved.
func (d *DB) ClaimRounds(ctx context.Context, anonID, userID string) (int64, error) {
	if anonID == "" || userID == "" || anonID == userID {
		return 0, nil
	}
	res, err := d.SQL.ExecContext(ctx, d.rebind(`UPDATE rounds SET player_id=? WHERE player_id=?`), userID, anonID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
