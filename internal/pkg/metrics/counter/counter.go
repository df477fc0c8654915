package counter

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/timenowsbs/timenow/internal/pkg/cache"
	"github.com/timenowsbs/timenow/internal/pkg/database"
)

const (
	postViewsKey = "blog:counters:views"
	toolUsageKey = "widget:counters:usage"
)

// AddPostView increments the pending view counter for a blog post in Redis
func AddPostView(postID uint) error {
	ctx := context.Background()
	field := strconv.FormatUint(uint64(postID), 10)
	return cache.GetClient().HIncrBy(ctx, postViewsKey, field, 1).Err()
}

// AddToolUsage increments the pending usage counter for a widget tool in Redis
func AddToolUsage(tool string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, toolUsageKey, tool, 1).Err()
}

// ToolUsageSnapshot returns the current pending usage counters per tool.
func ToolUsageSnapshot() (map[string]int64, error) {
	ctx := context.Background()
	data, err := cache.GetClient().HGetAll(ctx, toolUsageKey).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(data))
	for tool, v := range data {
		n, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil {
			continue
		}
		out[tool] = n
	}
	return out, nil
}

// FlushAll flushes pending post view counters to the database
func FlushAll() error {
	return flushHashToTable(postViewsKey, "blog_posts", "view_count")
}

// StartFlushWorker drains the pending counters to the database on a fixed
// interval. The returned stop function blocks until the worker exits.
func StartFlushWorker(interval time.Duration) func() {
	return startFlushLoop(interval, FlushAll)
}

func startFlushLoop(interval time.Duration, flush func() error) func() {
	ticker := time.NewTicker(interval)
	stopCh := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stopCh:
				log.Println("[Counter] Flush worker stopping")
				return
			case <-ticker.C:
				if err := flush(); err != nil {
					log.Printf("[Counter] Flush error: %v", err)
				}
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(stopCh)
		wg.Wait()
	}
}

// flushHashToTable drains a Redis hash atomically and applies batched increments to the table.
// Uses RENAME to a temporary key for atomic drain without losing in-flight increments.
func flushHashToTable(redisKey, table, column string) error {
	ctx := context.Background()
	rdb := cache.GetClient()

	// Atomically move the hash to a temp key for draining
	tmpKey := fmt.Sprintf("%s:tmp:%d", redisKey, time.Now().UnixNano())
	if err := rdb.Do(ctx, "RENAME", redisKey, tmpKey).Err(); err != nil {
		// If key does not exist, nothing to flush
		if strings.Contains(strings.ToLower(err.Error()), "no such key") {
			return nil
		}
		// Some Redis libs return redis.Nil; treat as empty
		if err.Error() == "redis: nil" {
			return nil
		}
		return err
	}

	// Ensure cleanup of tmpKey even if later steps fail
	defer rdb.Del(ctx, tmpKey)

	data, err := rdb.HGetAll(ctx, tmpKey).Result()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	// Build batched UPDATE using CASE WHEN id THEN inc
	type pair struct {
		id  uint64
		inc int64
	}
	pairs := make([]pair, 0, len(data))
	for k, v := range data {
		id, perr := strconv.ParseUint(k, 10, 64)
		if perr != nil {
			continue
		}
		inc, ierr := strconv.ParseInt(v, 10, 64)
		if ierr != nil || inc == 0 {
			continue
		}
		pairs = append(pairs, pair{id: id, inc: inc})
	}
	if len(pairs) == 0 {
		return nil
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].id < pairs[j].id })

	// UPDATE blog_posts SET <column> = <column> + CASE id WHEN ? THEN ? ... END WHERE id IN ( ... )
	var builder strings.Builder
	args := make([]interface{}, 0, len(pairs)*3)
	builder.WriteString("UPDATE ")
	builder.WriteString(table)
	builder.WriteString(" SET ")
	builder.WriteString(column)
	builder.WriteString(" = ")
	builder.WriteString(column)
	builder.WriteString(" + CASE id ")
	for _, p := range pairs {
		builder.WriteString(" WHEN ? THEN ?")
		args = append(args, p.id, p.inc)
	}
	builder.WriteString(" END WHERE id IN (")
	for i, p := range pairs {
		if i > 0 {
			builder.WriteString(",")
		}
		builder.WriteString("?")
		args = append(args, p.id)
	}
	builder.WriteString(")")

	sql := builder.String()
	db := database.GetDB()
	if err := db.Exec(sql, args...).Error; err != nil {
		return err
	}
	return nil
}
