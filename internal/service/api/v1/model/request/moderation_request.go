package request

// TextModerationRequest 텍스트 검사 요청
type TextModerationRequest struct {
	Content string `json:"content" validate:"required" korean:"검사할 내용" example:"안녕하세요"`
}

// ImageModerationRequest 이미지 검사 요청. 각 항목은 원본 저장소 기준의 파일 참조입니다.
type ImageModerationRequest struct {
	Images []string `json:"images" validate:"dive,required" korean:"이미지 목록" example:"uploads/2024/a.png"`
}
