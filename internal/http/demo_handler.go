package httpapi

import (
	"net/http"
	"time"
)

// DemoHandler 演示模式 Handler（公开路径，不要求身份）
// 返回固定的示例数据，供未注册用户浏览门户形态
type DemoHandler struct{}

// NewDemoHandler 创建演示 Handler
func NewDemoHandler() *DemoHandler {
	return &DemoHandler{}
}

// ServeHTTP 实现 http.Handler 接口
func (h *DemoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.Overview(w, r)
}

// Overview 演示工作台（示例患者 Jane Sample）
func (h *DemoHandler) Overview(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	result := map[string]any{
		"demo":     true,
		"role":     "patient",
		"nickName": "Jane Sample",
		"stats": map[string]any{
			"upcomingVisitCount": 2,
			"documentCount":      4,
			"unreadMessageCount": 1,
		},
		"upcomingVisits": []any{
			map[string]any{
				"id":             "demo-visit-1",
				"patientName":    "Jane Sample",
				"clinicianName":  "Alex Rivera, RN",
				"visitType":      "nursing",
				"status":         "scheduled",
				"scheduledStart": now.Add(24 * time.Hour).Truncate(time.Hour),
				"scheduledEnd":   now.Add(25 * time.Hour).Truncate(time.Hour),
			},
			map[string]any{
				"id":             "demo-visit-2",
				"patientName":    "Jane Sample",
				"clinicianName":  "Sam Lee, PT",
				"visitType":      "physical_therapy",
				"status":         "scheduled",
				"scheduledStart": now.Add(72 * time.Hour).Truncate(time.Hour),
				"scheduledEnd":   now.Add(73 * time.Hour).Truncate(time.Hour),
			},
		},
	}

	writeJSON(w, http.StatusOK, Ok(result))
}
