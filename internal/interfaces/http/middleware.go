package http

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jhoicas/inventario-patrimonio/pkg/logger"
)

// RequestObserver recibe el fin de cada petición (métricas HTTP).
type RequestObserver interface {
	RequestStarted() (done func(method, route string, status int))
}

// RequestID asigna un id a cada petición (o respeta X-Request-ID entrante).
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(fiber.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(LocalRequestID, id)
		c.Set(fiber.HeaderXRequestID, id)
		return c.Next()
	}
}

// RequestLogger registra method, path, status, latency y request_id, y alimenta las
// métricas HTTP. Los errores se resuelven aquí con el ErrorHandler de la app para que
// el status registrado sea el final.
func RequestLogger(log *logger.Logger, obs RequestObserver) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx) error {
		start := time.Now()
		var done func(string, string, int)
		if obs != nil {
			done = obs.RequestStarted()
		}
		reqID, _ := c.Locals(LocalRequestID).(string)
		c.Locals(LocalLogger, log.WithRequestID(reqID))

		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		if done != nil {
			done(c.Method(), c.Route().Path, status)
		}
		log.Info().
			Str("request_id", reqID).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
		return nil
	}
}

// requestLog logger de la petición con su request id.
func requestLog(c *fiber.Ctx) *logger.Logger {
	if l, ok := c.Locals(LocalLogger).(*logger.Logger); ok {
		return l
	}
	return logger.Nop()
}

// ─── Login rate limiter ───────────────────────────────────────────────────────

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter token bucket por IP de cliente.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	ttl      time.Duration
	lastGC   time.Time
}

// NewLoginRateLimiter permite perMinute intentos por minuto por IP (ráfaga = perMinute).
func NewLoginRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
		ttl:      10 * time.Minute,
	}
}

// Allow consume un token para ip.
func (l *RateLimiter) Allow(ip string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastGC) > l.ttl {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.ttl {
				delete(l.visitors, k)
			}
		}
		l.lastGC = now
	}
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Handler middleware: 429 al superar el límite.
func (l *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !l.Allow(c.IP()) {
			c.Set(fiber.HeaderRetryAfter, "60")
			if isHX(c) || !wantsJSON(c) {
				return renderFragment(c, fiber.StatusTooManyRequests, "message",
					messageView{Message: "Muitas tentativas de login. Tente novamente em um minuto."})
			}
			return c.Status(fiber.StatusTooManyRequests).JSON(errorBody("RATE_LIMITED", "muitas tentativas"))
		}
		return c.Next()
	}
}

