package ginserver_test

import (
	"bufio"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vshulcz/dsmr-exporter/internal/adapters/exporter/prom"
	"github.com/vshulcz/dsmr-exporter/internal/adapters/http/ginserver"
	"github.com/vshulcz/dsmr-exporter/internal/domain"
)

func ExampleNewRouter() {
	gin.SetMode(gin.TestMode)
	reg := prom.New("example")
	reg.Update([]domain.MetricSample{{Name: "current_electricity_usage", Value: 3.731}})
	gatherer, _ := prom.NewGatherer(reg)
	router := ginserver.NewRouter(ginserver.NewHandler(gatherer, zap.NewNop()), zap.NewNop())

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	fmt.Println(resp.Code)

	sc := bufio.NewScanner(strings.NewReader(resp.Body.String()))
	for sc.Scan() {
		if strings.HasPrefix(sc.Text(), "current_electricity_usage ") {
			fmt.Println(sc.Text())
		}
	}
	// Output:
	// 200
	// current_electricity_usage 3.731
}
