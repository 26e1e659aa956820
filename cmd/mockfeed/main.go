package main

import (
	"flag"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	"market-watchlist/src/logger"
	"market-watchlist/src/models"

	"github.com/gin-gonic/gin"
)

// mockfeed serves the quoting service endpoints with a random walk so the
// watchlist can run without a trading terminal.

type instrument struct {
	symbol    string
	price     float64
	open      float64
	digits    int
	spread    float64
	position  *models.MRawPosition
	tradeable bool
}

type feed struct {
	mu          sync.Mutex
	rng         *rand.Rand
	instruments []*instrument
}

var timeframeSeconds = map[string]int64{"M1": 60, "M5": 300, "H1": 3600, "D1": 86400, "W1": 604800}

// -----------------------------------------------------------------------------

func newFeed(seed int64) *feed {
	return &feed{
		rng: rand.New(rand.NewSource(seed)),
		instruments: []*instrument{
			{symbol: "EURUSD", price: 1.0950, digits: 5, spread: 0.00002, tradeable: true,
				position: &models.MRawPosition{Symbol: "EURUSD", Volume: 1, PriceOpen: 1.0900}},
			{symbol: "GBPUSD", price: 1.2700, digits: 5, spread: 0.00003, tradeable: true},
			{symbol: "USDJPY", price: 150.12, digits: 3, spread: 0.01, tradeable: true},
			{symbol: "XAUUSD", price: 2030.5, digits: 2, spread: 0.25, tradeable: true,
				position: &models.MRawPosition{Symbol: "XAUUSD", Volume: 0.5, PriceOpen: 2010}},
			{symbol: "US500", price: 5100, digits: 1, spread: 0.5},
		},
	}
}

func (f *feed) step() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, in := range f.instruments {
		if in.open == 0 {
			in.open = in.price
		}
		in.price *= 1 + f.rng.NormFloat64()*0.0005
	}
}

func round(v float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}

// -----------------------------------------------------------------------------

func (f *feed) assets(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	assets := make([]gin.H, 0, len(f.instruments))
	for _, in := range f.instruments {
		change := 0.0
		if in.open != 0 {
			change = (in.price - in.open) / in.open * 100
		}
		assets = append(assets, gin.H{
			"symbol":        in.symbol,
			"price":         round(in.price, in.digits),
			"daily_change":  round(change, 4),
			"spread":        in.spread,
			"digits":        in.digits,
			"trade_allowed": in.tradeable,
		})
	}
	c.JSON(http.StatusOK, gin.H{"assets": assets})
}

func (f *feed) positions(c *gin.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	tickets := []models.MRawPosition{}
	for _, in := range f.instruments {
		if in.position == nil {
			continue
		}
		p := *in.position
		p.PriceCurrent = round(in.price, in.digits)
		p.Profit = round((in.price-p.PriceOpen)*p.Volume*100000/in.price, 2)
		tickets = append(tickets, p)
	}
	c.JSON(http.StatusOK, gin.H{"positions": tickets})
}

func (f *feed) history(c *gin.Context) {
	step, ok := timeframeSeconds[c.DefaultQuery("timeframe", "H1")]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "unknown timeframe"})
		return
	}
	count, err := strconv.Atoi(c.DefaultQuery("count", "100"))
	if err != nil || count <= 0 || count > 5000 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid count"})
		return
	}

	f.mu.Lock()
	var price float64
	var digits int
	for _, in := range f.instruments {
		if in.symbol == c.Param("symbol") {
			price, digits = in.price, in.digits
		}
	}
	rng := rand.New(rand.NewSource(f.rng.Int63()))
	f.mu.Unlock()

	if price == 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "No data available"})
		return
	}

	// Walk backwards from the current price, then emit oldest first.
	now := time.Now().Unix() / step * step
	rows := make([][]float64, count)
	closePrice := price
	for i := count - 1; i >= 0; i-- {
		open := closePrice * (1 + rng.NormFloat64()*0.002)
		high := math.Max(open, closePrice) * (1 + math.Abs(rng.NormFloat64())*0.001)
		low := math.Min(open, closePrice) * (1 - math.Abs(rng.NormFloat64())*0.001)
		ts := now - int64(count-1-i)*step
		rows[i] = []float64{float64(ts), round(open, digits), round(high, digits), round(low, digits), round(closePrice, digits), float64(rng.Intn(5000))}
		closePrice = open
	}
	c.JSON(http.StatusOK, gin.H{"data": rows})
}

// -----------------------------------------------------------------------------

func main() {
	addr := flag.String("addr", "127.0.0.1:8000", "listen address")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random walk seed")
	flag.Parse()

	log := logger.NewLogger(nil, "MockFeed")
	gin.SetMode(gin.ReleaseMode)

	f := newFeed(*seed)
	go func() {
		for range time.Tick(time.Second) {
			f.step()
		}
	}()

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET("/assets", f.assets)
	engine.GET("/positions", f.positions)
	engine.GET("/historical-data/:symbol", f.history)

	log.Info("Serving mock quoting service on http://%s", *addr)
	if err := engine.Run(*addr); err != nil {
		log.Critical("Mock feed failed: %v", err)
	}
}
