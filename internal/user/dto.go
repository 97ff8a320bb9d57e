package user

type GithubLoginDTO struct {
	Code string `json:"code"`
}

type LoginResult struct {
	User         *User
	SessionToken string
	RefreshToken string
}
