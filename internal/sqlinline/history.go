package sqlinline

const QEnsureHistoryTable = `--sql 3f1c7a9e-6d24-4c59-9a41-2b8e0d5f7c13
create table if not exists generation_history (
  id         text primary key,
  image_data text not null,
  media_type text not null,
  prompt     text not null,
  kind       text not null,
  created_at timestamptz not null
);
`

const QListHistory = `--sql 8e4b2d17-5a0f-4c36-bd92-71c3e6a8f045
select id, image_data, media_type, prompt, kind, created_at
from generation_history
order by created_at desc;
`

const QDeleteHistory = `--sql c29d8f40-1e67-4b8a-a5d3-94f6b2c7e801
delete from generation_history;
`

const QInsertHistoryEntry = `--sql 6a75e3b2-9c48-4f01-8de6-53a1f9d04b27
insert into generation_history(id, image_data, media_type, prompt, kind, created_at)
values ($1, $2, $3, $4, $5, $6);
`
