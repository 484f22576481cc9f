package provider

// Outcome 검수 제공자 응답을 해석한 결과입니다.
type Outcome int

const (
	// Allowed 통과 (errcode 0, errcode 없음, 빈 응답 포함)
	Allowed Outcome = iota

	// RejectedText 텍스트 거부
	RejectedText

	// RejectedSpecificImage 금지 콘텐츠로 분류된 이미지 (errcode 87014)
	RejectedSpecificImage

	// RejectedGenericImage 그 외 0이 아닌 errcode를 받은 이미지
	RejectedGenericImage
)

func (o Outcome) String() string {
	switch o {
	case Allowed:
		return "allowed"
	case RejectedText:
		return "rejected_text"
	case RejectedSpecificImage:
		return "rejected_specific_image"
	case RejectedGenericImage:
		return "rejected_generic_image"
	default:
		return "unknown"
	}
}

// Verdict 한 번의 검수 호출 결과입니다. ErrCode와 ErrMsg는 진단 용도이며 사용자에게 노출하지 않습니다.
type Verdict struct {
	Outcome Outcome
	ErrCode int64
	ErrMsg  string
}

// IsAllowed 통과 여부를 반환합니다.
func (v Verdict) IsAllowed() bool {
	return v.Outcome == Allowed
}
