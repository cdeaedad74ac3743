package processor

import "github.com/prometheus/client_golang/prometheus"

var (
	updatesProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "codemaster_updates_processed_total",
		Help: "Total number of Telegram updates handed to the worker.",
	})
	gamesStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "codemaster_games_started_total",
		Help: "Total number of games started, explicitly or by a first guess.",
	})
	guessesMade = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "codemaster_guesses_total",
		Help: "Total number of valid guesses.",
	})
	invalidGuesses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "codemaster_invalid_guesses_total",
		Help: "Total number of messages rejected as guesses.",
	})
	gamesWon = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "codemaster_games_won_total",
		Help: "Total number of solved games.",
	})
	newRecords = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "codemaster_new_records_total",
		Help: "Total number of personal records set.",
	})
)

func init() {
	prometheus.MustRegister(updatesProcessed)
	prometheus.MustRegister(gamesStarted)
	prometheus.MustRegister(guessesMade)
	prometheus.MustRegister(invalidGuesses)
	prometheus.MustRegister(gamesWon)
	prometheus.MustRegister(newRecords)
}
