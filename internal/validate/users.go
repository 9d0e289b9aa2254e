package validate

// SignUp validates the sign-up credentials.
func SignUp(username, email, password string) Result {
	return First("all fields are required , please input all fields",
		Text(username, "the username is required , please input the username",
			Length(username, 3, 50, "the username must be between 3 and 50 characters"),
		),
		Text(email, "the email is required , please input the email",
			Email(email, "please enter a valid email address"),
		),
		Text(password, "the password is required , please input the password",
			MinLength(password, 6, "the password must be at least 6 characters"),
		),
	)
}

// LogIn validates the log-in credentials.
func LogIn(email, password string) Result {
	return First("all fields are required , please input all fields",
		Text(email, "the email is required , please input the email",
			Email(email, "please enter a valid email address"),
		),
		Text(password, "the password is required , please input the password"),
	)
}

// UserUpdate validates an admin profile update payload.
func UserUpdate(username, email string) Result {
	return First("all fields are required , please input all fields",
		Text(username, "the username is required , please input the username",
			Length(username, 3, 50, "the username must be between 3 and 50 characters"),
		),
		Text(email, "the email is required , please input the email",
			Email(email, "please enter a valid email address"),
		),
	)
}
