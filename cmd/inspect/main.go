// Command inspect prints session history from a journal database: the
// session list, or one session's level transitions and unlock log.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/danielpatrickdp/engagement-engine/internal/journal"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to sessions.db")
	session := flag.String("session", "", "show single session detail")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/sessions.db [--session id] [--json]")
		os.Exit(2)
	}

	j, err := journal.Open(*dbPath, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer j.Close()

	if *session != "" {
		err = runDetailMode(j, *session, *jsonOut)
	} else {
		err = runListMode(j, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type sessionRow struct {
	SessionID string `json:"session_id"`
	StartedAt string `json:"started_at"`
	ClosedAt  string `json:"closed_at,omitempty"`
}

func runListMode(j *journal.Journal, jsonOut bool) error {
	sessions, err := j.Sessions()
	if err != nil {
		return err
	}

	rows := make([]sessionRow, 0, len(sessions))
	for _, s := range sessions {
		row := sessionRow{
			SessionID: s.SessionID,
			StartedAt: s.StartedAt.Format(time.RFC3339),
		}
		if !s.ClosedAt.IsZero() {
			row.ClosedAt = s.ClosedAt.Format(time.RFC3339)
		}
		rows = append(rows, row)
	}

	if jsonOut {
		return printJSON(rows)
	}
	fmt.Printf("%-36s  %-20s  %s\n", "SESSION", "STARTED", "CLOSED")
	for _, r := range rows {
		closed := r.ClosedAt
		if closed == "" {
			closed = "-"
		}
		fmt.Printf("%-36s  %-20s  %s\n", r.SessionID, r.StartedAt, closed)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type sessionDetail struct {
	SessionID string                 `json:"session_id"`
	Levels    []journal.LevelRecord  `json:"levels"`
	Unlocks   []journal.UnlockRecord `json:"unlocks"`
}

func runDetailMode(j *journal.Journal, sessionID string, jsonOut bool) error {
	levels, err := j.Levels(sessionID)
	if err != nil {
		return err
	}
	unlocks, err := j.Unlocks(sessionID)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(sessionDetail{SessionID: sessionID, Levels: levels, Unlocks: unlocks})
	}

	fmt.Printf("session %s\n\n", sessionID)
	fmt.Printf("%-22s  %-5s  %-10s  %-12s  %s\n", "TAKEN", "LEVEL", "CONF", "LABEL", "FLAGS")
	for _, l := range levels {
		flags := l.Flags
		if flags == "" {
			flags = "-"
		}
		fmt.Printf("%-22s  %-5d  %-10.3f  %-12s  %s\n",
			l.TakenAt.Format(time.RFC3339), l.Level, l.Confidence, l.Label, flags)
	}

	if len(unlocks) > 0 {
		fmt.Printf("\n%-22s  %-20s  %-5s  %s\n", "UNLOCKED", "DISCOVERY", "LEVEL", "SOURCE")
		for _, u := range unlocks {
			fmt.Printf("%-22s  %-20s  %-5d  %s\n",
				u.UnlockedAt.Format(time.RFC3339), u.Discovery, u.Level, u.Source)
		}
	}
	return nil
}

// #endregion detail-mode

// #region output

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// #endregion output
