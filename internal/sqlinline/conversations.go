// Package sqlinline keeps every SQL statement as a tagged constant so the
// sqllint tool can find and check them.
package sqlinline

const QGetConversation = `--sql 9d6e0050-6d83-4c6c-a917-3db1b6471888
select id, partition_key, turns, user_turns, pending_request_id, pending_prompt, updated_at
from conversations
where id = $1 and partition_key = $2;
`

const QUpsertConversation = `--sql 45b6cf3b-b888-4b06-9df8-02160f6fd179
insert into conversations (id, partition_key, turns, user_turns, pending_request_id, pending_prompt, updated_at)
values ($1, $2, $3, $4, $5, $6, now())
on conflict (id) do update
set turns = excluded.turns,
    user_turns = excluded.user_turns,
    pending_request_id = excluded.pending_request_id,
    pending_prompt = excluded.pending_prompt,
    updated_at = now()
returning id, partition_key, turns, user_turns, pending_request_id, pending_prompt, updated_at;
`

const QQueryConversations = `--sql aabf08cd-024b-43fe-b39b-62fd0f488dad
select id, partition_key, turns, user_turns, pending_request_id, pending_prompt, updated_at
from conversations
where ($1 = '' or partition_key = $1)
  and ($2 = '' or pending_request_id = $2)
  and (not $3 or pending_request_id <> '')
order by updated_at desc
limit $4;
`
