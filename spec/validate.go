package spec

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/zintix-labs/patternlab/errs"
)

// validate 為整個設定層共用的驗證器（validator 內部有快取，可重複使用）。
var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct 以 struct tag 驗證設定，並把欄位錯誤整理成單一 Fatal 錯誤。
func ValidateStruct(v any) error {
	return ValidateStructLv(v, errs.Fatal, "invalid setting")
}

// ValidateStructLv 與 ValidateStruct 相同，但由呼叫端決定錯誤等級與訊息（例如請求驗證用 Warn）。
func ValidateStructLv(v any, lv errs.ErrLevel, msg string) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs.Wrap(err, "validate failed")
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		f := fe.Namespace() + ":" + fe.Tag()
		if fe.Param() != "" {
			f += "=" + fe.Param()
		}
		fields = append(fields, f)
	}
	return errs.NewWithExtra(lv, msg, strings.Join(fields, "; "))
}
