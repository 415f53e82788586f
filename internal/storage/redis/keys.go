package redis

import (
	"fmt"

	"github.com/mcoot/crossword-extravaganza/internal/model"
)

// Key prefix for all crossword data
const keyPrefix = "cwx"

// resultKey returns the Redis key for a MatchResult
func resultKey(id string) string {
	return fmt.Sprintf("%s:result:%s", keyPrefix, id)
}

// resultsIndexKey returns the Redis key for the ZSET of all result ids, scored by finish time
func resultsIndexKey() string {
	return fmt.Sprintf("%s:idx:results", keyPrefix)
}

// playerResultsIndexKey returns the Redis key for the ZSET of one player's result ids
func playerResultsIndexKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:idx:player_results:%s", keyPrefix, playerID)
}
