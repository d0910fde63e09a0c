package main

// General API documentation for swaggo. Run `swag init -g cmd/sqlgen/docs.go` to generate docs.
//
// @title           sqlgen API
// @version         1.0
// @description     HTTP API that turns a prompt into a single SQL statement using a local checkpoint, a hosted chat-completion API or an Ollama-served model.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
