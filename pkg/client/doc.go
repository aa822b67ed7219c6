// Package bookclub is a Go client for the bookclub HTTP API.
//
//	c, _ := bookclub.New("http://localhost:8080", bookclub.WithAPIKey(os.Getenv("BOOKCLUB_API_KEY")))
//	ans, err := c.Answer(ctx, bookclub.AnswerRequest{
//	    Question: "Which book explains compounding best?",
//	    Category: "bm",
//	    Author:   "Morgan Housel",
//	    Mode:     bookclub.ModeHybrid,
//	})
//	if errors.Is(err, bookclub.ErrUnknownModel) { ... }
//
// Errors returned by the server unwrap to the exported sentinels; use errors.Is.
package bookclub
