package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden             ErrCode = "FORBIDDEN"
	ErrParticipantAccessOnly ErrCode = "PARTICIPANT_ACCESS_ONLY"
	ErrStaffAccessOnly       ErrCode = "STAFF_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Access gate ───────────────────────────────────────────────────
	ErrCodeFormat        ErrCode = "CODE_FORMAT_INVALID"
	ErrInvalidAccessCode ErrCode = "INVALID_ACCESS_CODE"
	ErrRotatingDisabled  ErrCode = "ROTATING_CODE_DISABLED"

	// ─── Session ───────────────────────────────────────────────────────
	ErrProfileValidation ErrCode = "PROFILE_VALIDATION_FAILED"
	ErrSessionNotFound   ErrCode = "SESSION_NOT_FOUND"
	ErrSessionNotStarted ErrCode = "SESSION_NOT_STARTED"
	ErrSessionSubmitted  ErrCode = "SESSION_ALREADY_SUBMITTED"
	ErrUnknownQuestion   ErrCode = "UNKNOWN_QUESTION"
	ErrAnswerShape       ErrCode = "ANSWER_SHAPE_INVALID"
	ErrPageOutOfRange    ErrCode = "PAGE_OUT_OF_RANGE"
	ErrBankEmpty         ErrCode = "QUESTION_BANK_EMPTY"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email atau kata sandi salah."
	case ErrTokenRequired:
		return "Token autentikasi diperlukan."
	case ErrTokenInvalid:
		return "Token autentikasi tidak valid."
	case ErrTokenExpired:
		return "Token autentikasi telah kedaluwarsa."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "Anda tidak memiliki izin untuk mengakses sumber daya ini."
	case ErrParticipantAccessOnly:
		return "Sumber daya ini terbatas untuk peserta."
	case ErrStaffAccessOnly:
		return "Sumber daya ini terbatas untuk petugas."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validasi gagal. Silakan periksa masukan Anda."
	case ErrInvalidID:
		return "Format ID tidak valid."
	case ErrInvalidPayload:
		return "Payload permintaan tidak valid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Sumber daya tidak ditemukan."
	case ErrConflict:
		return "Sumber daya sudah ada."

	// ─── Access gate ───────────────────────────────────────────────────
	case ErrCodeFormat:
		return "Format kode akses harus XXXX-XXXX-XXXX."
	case ErrInvalidAccessCode:
		return "Kode akses tidak valid atau sudah digunakan."
	case ErrRotatingDisabled:
		return "Kode akses berkala tidak diaktifkan."

	// ─── Session ───────────────────────────────────────────────────────
	case ErrProfileValidation:
		return "Data peserta belum lengkap. Silakan periksa kembali."
	case ErrSessionNotFound:
		return "Sesi asesmen tidak ditemukan."
	case ErrSessionNotStarted:
		return "Sesi asesmen belum dimulai."
	case ErrSessionSubmitted:
		return "Sesi asesmen sudah dikumpulkan."
	case ErrUnknownQuestion:
		return "Pertanyaan tidak ditemukan."
	case ErrAnswerShape:
		return "Bentuk jawaban tidak sesuai dengan jenis pertanyaan."
	case ErrPageOutOfRange:
		return "Halaman di luar rentang pertanyaan."
	case ErrBankEmpty:
		return "Bank soal kosong."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Terlalu banyak permintaan. Silakan coba lagi nanti."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Terjadi kesalahan server internal."
	default:
		return "Terjadi kesalahan yang tidak terduga."
	}
}
