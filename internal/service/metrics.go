package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var actionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "plantcare",
	Name:      "community_actions_total",
	Help:      "Successful community mutations by action",
}, []string{"action"})

const (
	actCreatePost  = "create_post"
	actAddReply    = "add_reply"
	actLikePost    = "like_post"
	actLikeReply   = "like_reply"
	actDeletePost  = "delete_post"
	actDeleteReply = "delete_reply"
	actSignup      = "signup"
	actJoin        = "join_community"
)

func countAction(a string) { actionsTotal.WithLabelValues(a).Inc() }
