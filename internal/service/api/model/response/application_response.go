package response

import (
	"time"

	"github.com/darkkaiser/miniapp-server/internal/store"
)

// ApplicationResponse 미니앱 정보 응답. 앱 시크릿은 포함하지 않습니다.
type ApplicationResponse struct {
	ID          uint64    `json:"id" example:"1"`
	Name        string    `json:"name" example:"캠퍼스 마켓"`
	AppKey      string    `json:"app_key" example:"wx0123456789abcdef"`
	CollegeID   uint64    `json:"college_id" example:"3"`
	Mobile      string    `json:"mobile" example:"010-0000-0000"`
	Status      string    `json:"status" example:"online"`
	AllianceKey string    `json:"alliance_key" example:"7ZuvTqTRvvQmXhBdCfNw6b"`
	Domain      string    `json:"domain,omitempty" example:"market.example.com"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewApplicationResponse 저장소 모델을 응답 모델로 변환합니다.
func NewApplicationResponse(app *store.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:          app.ID,
		Name:        app.Name,
		AppKey:      app.AppKey,
		CollegeID:   app.CollegeID,
		Mobile:      app.Mobile,
		Status:      string(app.Status),
		AllianceKey: app.AllianceKey,
		Domain:      app.Domain,
		CreatedAt:   app.CreatedAt,
		UpdatedAt:   app.UpdatedAt,
	}
}

// NewApplicationListResponse 목록 응답으로 변환합니다. 빈 목록은 []로 직렬화됩니다.
func NewApplicationListResponse(apps []*store.Application) []ApplicationResponse {
	out := make([]ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		out = append(out, NewApplicationResponse(app))
	}
	return out
}

// AdminLinkResponse 관리자 연결 결과 응답
type AdminLinkResponse struct {
	AdminID   uint64    `json:"admin_id" example:"2"`
	AppID     uint64    `json:"app_id" example:"1"`
	CreatedAt time.Time `json:"created_at"`
}
