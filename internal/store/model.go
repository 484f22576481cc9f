package store

import "time"

// Status 애플리케이션의 게시 상태입니다.
type Status string

const (
	// StatusOnline 정상 서비스 중
	StatusOnline Status = "online"

	// StatusPendingAudit 심사 대기 중
	StatusPendingAudit Status = "pending_audit"

	// StatusClosed 서비스 종료
	StatusClosed Status = "closed"
)

// Valid 정의된 상태 값인지 확인합니다.
func (s Status) Valid() bool {
	switch s {
	case StatusOnline, StatusPendingAudit, StatusClosed:
		return true
	}
	return false
}

// Application 등록된 클라이언트 애플리케이션(미니 프로그램)입니다.
//
// AllianceKey는 생성 시 한 번 발급되며 이후 변경되지 않습니다.
type Application struct {
	ID          uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"size:128;not null"`
	AppKey      string    `json:"app_key" gorm:"size:64;not null"`
	AppSecret   string    `json:"app_secret" gorm:"size:128;not null"`
	CollegeID   uint64    `json:"college_id" gorm:"index"`
	Mobile      string    `json:"mobile" gorm:"size:32"`
	Status      Status    `json:"status" gorm:"size:32;not null;index"`
	AllianceKey string    `json:"alliance_key" gorm:"size:64;not null;uniqueIndex"`
	Domain      string    `json:"domain" gorm:"size:255"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName gorm 테이블 이름입니다.
func (Application) TableName() string { return "applications" }

// AdminAppLink 관리자와 애플리케이션의 연결입니다. (AdminID, AppID) 쌍은 유일합니다.
type AdminAppLink struct {
	AdminID   uint64    `json:"admin_id" gorm:"primaryKey;autoIncrement:false"`
	AppID     uint64    `json:"app_id" gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName gorm 테이블 이름입니다.
func (AdminAppLink) TableName() string { return "admin_app_links" }
