package common

// User-facing confirmation and rejection messages returned by the auth flow.
const (
	MsgOtpSent         = "OTP sent to email successfully."
	MsgEmailVerified   = "Email verified successfully. You can now create your account."
	MsgAccountCreated  = "Account created successfully."
	MsgLoggedOut       = "Logged out successfully."
	MsgAlreadyCreated  = "Account already created. Please log in."
	MsgUserNotFound    = "User not found."
	MsgEmailUnverified = "Email not verified yet. Please verify OTP first."
	MsgOtpNotRequested = "OTP not requested. Please request OTP first."
	MsgOtpNotGenerated = "OTP not generated."
	MsgOtpExpired      = "OTP expired."
	MsgInvalidOtp      = "Invalid OTP."
	MsgOtpSendFailed   = "Failed to send OTP email. Please try again later."
)
