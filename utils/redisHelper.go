package utils

import (
	"os"
	"strconv"
	"time"
)

func IntToString(n int) string {
	return strconv.Itoa(n)
}

func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN"))
	if err != nil {
		lifespan = 1
	}
	return time.Duration(lifespan) * time.Hour
}
