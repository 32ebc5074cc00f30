// Package server exposes the state container over HTTP.
//
// JSON endpoints under /tournaments mirror the container operations. A
// websocket at /tournaments/{id}/ws first sends the tournament's current
// snapshot, then a TOURNAMENT_UPDATED message after every applied operation
// on it, or TOURNAMENT_REMOVED when it is deleted.
//
// Operations that the container ignores (unknown round or match, wrong
// status, unchanged result) answer 409. Unknown tournaments answer 404.
package server
