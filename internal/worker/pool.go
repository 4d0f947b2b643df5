package worker

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"skillswap-backend/internal/models"
	"skillswap-backend/internal/services"
)

// Pool drains the redis email queue. Delivery happens out of the request
// path so a slow SMTP server never blocks a signup or a lesson start.
type Pool struct {
	redis       *redis.Client
	email       *services.EmailService
	workerCount int
	stopChan    chan struct{}
}

func NewPool(redisClient *redis.Client, email *services.EmailService, workerCount int) *Pool {
	return &Pool{
		redis:       redisClient,
		email:       email,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}
	log.Printf("Started %d email worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 30s timeout
		result, err := p.redis.BLPop(ctx, 30*time.Second, services.EmailQueue).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		var job models.EmailJob
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse email job: %v", id, err)
			continue
		}

		if err := p.process(job); err != nil {
			log.Printf("Worker %d: failed to send %s email to %s: %v", id, job.Type, job.To, err)
		}
	}
}

func (p *Pool) process(job models.EmailJob) error {
	switch job.Type {
	case "verification":
		return p.email.SendVerificationEmail(job.To, job.Token)
	case "lesson-started":
		return p.email.SendLessonStartedEmail(job.To, job.With)
	default:
		log.Printf("Unknown email job type: %s", job.Type)
		return nil
	}
}
