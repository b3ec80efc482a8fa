package http

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerReq struct {
	DisplayName      string `json:"display_name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	SecurityQuestion string `json:"security_question"`
	SecurityAnswer   string `json:"security_answer"`
}

type emailReq struct {
	Email string `json:"email"`
}

type verifyAnswerReq struct {
	Email  string `json:"email"`
	Answer string `json:"answer"`
}

type resetPasswordReq struct {
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
}

type allowlistReq struct {
	Email string `json:"email"`
}
