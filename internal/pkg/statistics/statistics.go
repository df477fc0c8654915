package statistics

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/timenowsbs/timenow/app/models"
	"github.com/timenowsbs/timenow/internal/pkg/cache"
	"github.com/timenowsbs/timenow/internal/pkg/database"
)

const (
	CacheKeyCommentsTotal = "statistics:comments:total"
	CacheKeyCommentsDaily = "statistics:comments:daily:%s" // Format with date YYYY-MM-DD
	CacheKeyUsers         = "statistics:users:total"
	CacheExpiration       = 30 * time.Minute
)

// StatisticsData holds the aggregate numbers shown on the landing page.
type StatisticsData struct {
	TodayComments int
	TotalUsers    int
	TotalComments int
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// ShouldUpdateCache reports whether the cached statistics are stale.
func ShouldUpdateCache() bool {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	return time.Since(lastCacheUpdate) > cacheUpdateInterval
}

// UpdateCacheIfNeeded refreshes the statistics cache when the interval elapsed.
func UpdateCacheIfNeeded() {
	if ShouldUpdateCache() {
		cacheUpdateMutex.Lock()
		defer cacheUpdateMutex.Unlock()

		if err := UpdateStatisticsCache(); err != nil {
			log.Printf("Error updating statistics cache: %v", err)
		} else {
			lastCacheUpdate = time.Now()
		}
	}
}

// ResetCacheUpdateTimer forces the next read to refresh the cache.
func ResetCacheUpdateTimer() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	lastCacheUpdate = time.Time{}
}

// UpdateStatisticsCache updates all statistics in the cache
func UpdateStatisticsCache() error {
	db := database.GetDB()

	var totalComments int64
	if err := db.Model(&models.BlogComment{}).Where("is_approved = ? AND is_spam = ?", true, false).Count(&totalComments).Error; err != nil {
		log.Printf("Error counting total comments: %v", err)
		return err
	}

	var todayComments int64
	today := time.Now().Format("2006-01-02")
	todayStart, _ := time.Parse("2006-01-02", today)
	todayEnd := todayStart.Add(24 * time.Hour)

	if err := db.Model(&models.BlogComment{}).Where("created_at BETWEEN ? AND ?", todayStart, todayEnd).Count(&todayComments).Error; err != nil {
		log.Printf("Error counting today's comments: %v", err)
		return err
	}

	var totalUsers int64
	if err := db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		log.Printf("Error counting total users: %v", err)
		return err
	}

	if err := cache.Set(CacheKeyCommentsTotal, strconv.FormatInt(totalComments, 10), CacheExpiration); err != nil {
		log.Printf("Error caching total comments: %v", err)
		return err
	}

	dailyKey := fmt.Sprintf(CacheKeyCommentsDaily, today)
	if err := cache.Set(dailyKey, strconv.FormatInt(todayComments, 10), CacheExpiration); err != nil {
		log.Printf("Error caching today's comments: %v", err)
		return err
	}

	if err := cache.Set(CacheKeyUsers, strconv.FormatInt(totalUsers, 10), CacheExpiration); err != nil {
		log.Printf("Error caching total users: %v", err)
		return err
	}

	log.Printf("Statistics updated in cache: Total Comments: %d, Today's Comments: %d, Total Users: %d",
		totalComments, todayComments, totalUsers)

	return nil
}

// GetTotalComments returns the number of visible comments from cache or database
func GetTotalComments() int {
	val, err := cache.Get(CacheKeyCommentsTotal)
	if err != nil {
		var count int64
		db := database.GetDB()
		if err := db.Model(&models.BlogComment{}).Where("is_approved = ? AND is_spam = ?", true, false).Count(&count).Error; err != nil {
			log.Printf("Error counting total comments: %v", err)
			return 0
		}

		if err := cache.Set(CacheKeyCommentsTotal, strconv.FormatInt(count, 10), CacheExpiration); err != nil {
			log.Printf("Error caching total comments: %v", err)
		}

		return int(count)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}

	return int(count)
}

// GetTodayComments returns the number of comments posted today from cache or database
func GetTodayComments() int {
	today := time.Now().Format("2006-01-02")
	dailyKey := fmt.Sprintf(CacheKeyCommentsDaily, today)

	val, err := cache.Get(dailyKey)
	if err != nil {
		var count int64
		db := database.GetDB()
		todayStart, _ := time.Parse("2006-01-02", today)
		todayEnd := todayStart.Add(24 * time.Hour)

		if err := db.Model(&models.BlogComment{}).Where("created_at BETWEEN ? AND ?", todayStart, todayEnd).Count(&count).Error; err != nil {
			log.Printf("Error counting today's comments: %v", err)
			return 0
		}

		if err := cache.Set(dailyKey, strconv.FormatInt(count, 10), CacheExpiration); err != nil {
			log.Printf("Error caching today's comments: %v", err)
		}

		return int(count)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}

	return int(count)
}

// GetTotalUsers returns the total number of users from cache or database
func GetTotalUsers() int {
	val, err := cache.Get(CacheKeyUsers)
	if err != nil {
		var count int64
		db := database.GetDB()
		if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
			log.Printf("Error counting total users: %v", err)
			return 0
		}

		if err := cache.Set(CacheKeyUsers, strconv.FormatInt(count, 10), CacheExpiration); err != nil {
			log.Printf("Error caching total users: %v", err)
		}

		return int(count)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}

	return int(count)
}

// GetStatisticsData returns all statistics data as StatisticsData structure
func GetStatisticsData() StatisticsData {
	UpdateCacheIfNeeded()

	return StatisticsData{
		TodayComments: GetTodayComments(),
		TotalUsers:    GetTotalUsers(),
		TotalComments: GetTotalComments(),
	}
}
